package environment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(context.Context) error {
	return f.err
}

func TestObservabilityHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name     string
		path     string
		db       pinger
		wantCode int
	}{
		{name: "livez", path: "/livez", db: fakePinger{}, wantCode: http.StatusOK},
		{name: "ready", path: "/readyz", db: fakePinger{}, wantCode: http.StatusOK},
		{name: "db down", path: "/readyz", db: fakePinger{err: errors.New("database is locked")}, wantCode: http.StatusServiceUnavailable},
		{name: "metrics", path: "/metrics", db: fakePinger{}, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			observabilityHandler(logger, tt.db).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}
