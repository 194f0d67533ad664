package telegram

import (
	"context"
	"time"

	"github.com/mymmrac/telego"

	botpkg "github.com/nopparoot15/Saltybot/bot"
)

// Notifier delivers admin notices and user DMs. Admin notices go through
// the worker pool so a slow Telegram call never blocks the caller; user
// DMs stay synchronous because callers react to their failure.
type Notifier struct {
	bot         *telego.Bot
	rl          *RateLimiter
	pool        botpkg.WorkerPool
	adminChatID int64
	logger      botpkg.Logger
}

// NewNotifier creates a Notifier. pool may be nil, in which case admin
// notices are sent synchronously.
func NewNotifier(b *telego.Bot, rl *RateLimiter, pool botpkg.WorkerPool, adminChatID int64, logger botpkg.Logger) *Notifier {
	return &Notifier{bot: b, rl: rl, pool: pool, adminChatID: adminChatID, logger: logger}
}

// NotifyAdmins implements bot.Notifier.
func (n *Notifier) NotifyAdmins(ctx context.Context, guildID int64, text string) error {
	if n.adminChatID == 0 {
		return nil
	}
	send := func(ctx context.Context) error {
		_, err := SendMessageWithRetry(ctx, n.rl, n.bot, &telego.SendMessageParams{
			ChatID: telego.ChatID{ID: n.adminChatID},
			Text:   text,
		})
		return err
	}

	if n.pool == nil {
		return send(ctx)
	}

	// detach from the request context so the notice survives the handler
	bg := context.WithoutCancel(ctx)
	err := n.pool.Submit(func() {
		sendCtx, cancel := context.WithTimeout(bg, 30*time.Second)
		defer cancel()
		if sendErr := send(sendCtx); sendErr != nil && n.logger != nil {
			n.logger.Warn("admin notice failed", "error", sendErr)
		}
	})
	if err != nil {
		// pool closed during shutdown, fall back to a direct send
		return send(ctx)
	}
	return nil
}

// NotifyUser implements bot.Notifier. In Telegram a DM chat id equals
// the user id; the send fails when the user never started the bot.
func (n *Notifier) NotifyUser(ctx context.Context, userID int64, text string) error {
	_, err := SendMessageWithRetry(ctx, n.rl, n.bot, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: userID},
		Text:   text,
	})
	return err
}
