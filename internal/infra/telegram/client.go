package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

type Client struct {
	api     *tgbotapi.BotAPI
	logger  *slog.Logger
	limiter *rate.Limiter
	updates tgbotapi.UpdatesChannel
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewClient connects to the Bot API. messagesPerSecond caps all outgoing sends.
func NewClient(token string, messagesPerSecond float64, logger *slog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		api:     bot,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), 1),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start begins long polling for updates.
func (c *Client) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	c.updates = c.api.GetUpdatesChan(u)

	c.logger.Info("Telegram bot started", "username", c.api.Self.UserName)
	return nil
}

// Stop ends long polling.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.api.StopReceivingUpdates()
	c.logger.Info("Telegram bot stopped")
}

func (c *Client) GetUpdates() tgbotapi.UpdatesChannel {
	return c.updates
}

// SendMessage sends plain text, waiting for the rate limiter.
func (c *Client) SendMessage(chatID int64, text string) error {
	if err := c.limiter.Wait(c.ctx); err != nil {
		return fmt.Errorf("rate limiting: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		c.logger.Error("Failed to send telegram message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()))
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SetCommands publishes the bot menu.
func (c *Client) SetCommands(commands ...tgbotapi.BotCommand) error {
	if _, err := c.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}
	return nil
}
