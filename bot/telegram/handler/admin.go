package handler

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"

	botpkg "github.com/nopparoot15/Saltybot/bot"
	"github.com/nopparoot15/Saltybot/bot/config"
	"github.com/nopparoot15/Saltybot/bot/telegram"
)

// SetupHandler posts the verification instructions into the verify chat.
type SetupHandler struct {
	Config      *config.Config
	RateLimiter *telegram.RateLimiter
	AdminIDs    map[int64]struct{}
}

func (h *SetupHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}
	if !isBotAdmin(h.AdminIDs, update.Message.From.ID) {
		return
	}

	verifyChatID := h.Config.GetInt64("VerifyChatID")
	if verifyChatID == 0 {
		verifyChatID = update.Message.Chat.ID
	}
	_, _ = telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: verifyChatID},
		Text:   setupText,
	})
}

// StatsHandler reports per-status request counts to admins.
type StatsHandler struct {
	Repo        botpkg.VerifyRepository
	Config      *config.Config
	RateLimiter *telegram.RateLimiter
	Logger      botpkg.Logger
	AdminIDs    map[int64]struct{}
}

func (h *StatsHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message
	if !isBotAdmin(h.AdminIDs, msg.From.ID) {
		return
	}

	counts, err := h.Repo.CountRequestsByStatus(ctx, h.Config.GetInt64("GuildID"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("stats query failed", "error", err)
		}
		return
	}

	text := fmt.Sprintf(statsText,
		counts[botpkg.StatusSubmitted],
		counts[botpkg.StatusApproved],
		counts[botpkg.StatusRejected])
	_, _ = telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, &telego.SendMessageParams{
		ChatID:          telego.ChatID{ID: msg.Chat.ID},
		Text:            text,
		ReplyParameters: &telego.ReplyParameters{MessageID: msg.MessageID},
	})
}
