package telegram

import (
	"context"

	"gym-cutoff/internal/stories/audit"
	"gym-cutoff/internal/telegram/cmds"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const userAgent = "telegram"

type Router struct {
	sender       messageSender
	adminChecker adminChecker
	localizer    localizer
	lang         string

	cutoffsCommand *cmds.CutoffsCommand
}

type adminChecker interface {
	IsAdmin(telegramID int64) bool
}

type localizer interface {
	Get(lang, key string, params map[string]interface{}) string
}

func NewRouter(
	sender messageSender,
	adminChecker adminChecker,
	localizer localizer,
	lang string,
	cutoffsCommand *cmds.CutoffsCommand,
) *Router {
	return &Router{
		sender:         sender,
		adminChecker:   adminChecker,
		localizer:      localizer,
		lang:           lang,
		cutoffsCommand: cutoffsCommand,
	}
}

// BotCommands is the menu published to Telegram.
func BotCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "cutoffs", Description: "List tier and fee cut-off rules"},
		{Command: "tier_set", Description: "Change a tier cut-off"},
		{Command: "fee_set", Description: "Change a fee cut-off"},
		{Command: "fee_add", Description: "Add a fee cut-off"},
		{Command: "split", Description: "Split for a membership price"},
		{Command: "split_tier", Description: "Split for a tier membership"},
	}
}

// Route handles admin commands. Anything that is not a command is ignored.
func (r *Router) Route(ctx context.Context, update *tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || !msg.IsCommand() {
		return nil
	}

	chatID := msg.Chat.ID
	if !r.adminChecker.IsAdmin(msg.From.ID) {
		return r.sender.SendMessage(chatID, r.localizer.Get(r.lang, "common.access_denied", nil))
	}

	// Telegram does not expose the client address, so ClientIP stays empty.
	actor := audit.Actor{
		ID:        msg.From.ID,
		Type:      audit.ActorAdmin,
		UserAgent: userAgent,
	}
	args := msg.CommandArguments()

	switch msg.Command() {
	case "cutoffs":
		return r.cutoffsCommand.List(ctx, chatID)
	case "tier_set":
		return r.cutoffsCommand.SetTier(ctx, actor, chatID, args)
	case "fee_set":
		return r.cutoffsCommand.SetFee(ctx, actor, chatID, args)
	case "fee_add":
		return r.cutoffsCommand.AddFee(ctx, actor, chatID, args)
	case "split":
		return r.cutoffsCommand.Split(ctx, chatID, args)
	case "split_tier":
		return r.cutoffsCommand.SplitTier(ctx, chatID, args)
	default:
		return r.cutoffsCommand.Help(chatID)
	}
}
