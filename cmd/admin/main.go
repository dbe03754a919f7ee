package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	environment "gym-cutoff/internal/env"
	"gym-cutoff/internal/telegram"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, err := environment.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup environment: %v", err)
	}

	logger := env.Logger
	logger.Info("Starting gym cut-off admin")

	if env.Servers.HTTP.Observability != nil {
		go func() {
			logger.Info("Starting observability server", slog.String("addr", env.Servers.HTTP.Observability.Addr))
			if err := env.Servers.HTTP.Observability.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Observability server error", slog.Any("error", err))
			}
		}()
	}

	if err := startTelegramBot(ctx, env); err != nil {
		logger.Error("Failed to start telegram bot", slog.Any("error", err))
		return
	}

	if err := env.Services.Workers.Start(); err != nil {
		logger.Error("Failed to start workers", slog.Any("error", err))
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Admin started. Press Ctrl+C to stop.")
	<-quit

	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), env.Config.ShutdownDuration)
	defer shutdownCancel()

	env.Services.Workers.Stop()

	if env.Clients.TelegramBot != nil {
		env.Clients.TelegramBot.Stop()
	}

	if env.Servers.HTTP.Observability != nil {
		if err := env.Servers.HTTP.Observability.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Observability server shutdown error", slog.Any("error", err))
		}
	}

	for _, closer := range env.Closers {
		closer()
	}

	logger.Info("Admin stopped")
}

func startTelegramBot(ctx context.Context, env *environment.Env) error {
	logger := env.Logger

	if env.Clients.TelegramBot == nil {
		logger.Info("Telegram bot disabled, running workers only")
		return nil
	}

	if env.Services.TelegramRouter == nil {
		return fmt.Errorf("telegram router is not initialized")
	}

	if err := env.Clients.TelegramBot.Start(ctx); err != nil {
		return fmt.Errorf("start telegram client: %w", err)
	}

	if err := env.Clients.TelegramBot.SetCommands(telegram.BotCommands()...); err != nil {
		logger.Error("Failed to set bot commands", slog.Any("error", err))
	} else {
		logger.Info("Bot commands set up")
	}

	updates := env.Clients.TelegramBot.GetUpdates()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.From != nil {
					logger.Debug("Received message",
						slog.Int64("chat_id", update.Message.Chat.ID),
						slog.Int64("user_id", update.Message.From.ID),
						slog.String("text", update.Message.Text))
				}

				if err := env.Services.TelegramRouter.Route(ctx, &update); err != nil {
					logger.Error("Failed to handle update", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}
