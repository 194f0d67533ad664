package handler

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"

	botpkg "github.com/nopparoot15/Saltybot/bot"
)

// Router dispatches incoming updates to feature handlers.
type Router struct {
	Verify   MessageHandler
	Setup    MessageHandler
	Stats    MessageHandler
	Decision CallbackHandler
	BotName  string
	Logger   botpkg.Logger
}

// Route handles one update. The caller decides the concurrency model;
// Route itself is safe to run from multiple goroutines.
func (r *Router) Route(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil {
		return
	}

	if update.CallbackQuery != nil {
		if strings.HasPrefix(update.CallbackQuery.Data, "verify ") && r.Decision != nil {
			r.Decision.Handle(ctx, b, update)
		}
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	switch command(update.Message.Text, r.BotName) {
	case "verify", "start":
		if r.Verify != nil {
			r.Verify.Handle(ctx, b, update)
		}
	case "verifysetup":
		if r.Setup != nil {
			r.Setup.Handle(ctx, b, update)
		}
	case "verifystats":
		if r.Stats != nil {
			r.Stats.Handle(ctx, b, update)
		}
	}
}

// command extracts the bare command name from a message, dropping a
// @botname suffix addressed to this bot. Commands addressed to another
// bot return "".
func command(text, botName string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := firstWord(text)[1:]
	if at := strings.Index(cmd, "@"); at >= 0 {
		if !strings.EqualFold(cmd[at+1:], botName) {
			return ""
		}
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}
