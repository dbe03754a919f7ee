package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flakySender struct {
	chats []int64
	fail  int64
}

func (f *flakySender) SendMessage(chatID int64, _ string) error {
	f.chats = append(f.chats, chatID)
	if chatID == f.fail {
		return errors.New("chat not found")
	}
	return nil
}

func TestAdminNotifier(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("fans out past failures", func(t *testing.T) {
		sender := &flakySender{fail: 2}
		NewAdminNotifier(sender, []int64{1, 2, 3}, logger).NotifyAdmins(context.Background(), "alert")
		assert.Equal(t, []int64{1, 2, 3}, sender.chats)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sender := &flakySender{}
		NewAdminNotifier(sender, []int64{1, 2}, logger).NotifyAdmins(ctx, "alert")
		assert.Empty(t, sender.chats)
	})
}
