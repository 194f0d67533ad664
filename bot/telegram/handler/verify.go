package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"

	botpkg "github.com/nopparoot15/Saltybot/bot"
	"github.com/nopparoot15/Saltybot/bot/config"
	"github.com/nopparoot15/Saltybot/bot/telegram"
	"github.com/nopparoot15/Saltybot/bot/verify"
)

// VerifyHandler receives /verify forms and posts approval cards.
type VerifyHandler struct {
	Service     *verify.Service
	Notifier    botpkg.Notifier
	Config      *config.Config
	RateLimiter *telegram.RateLimiter
	Logger      botpkg.Logger
}

func (h *VerifyHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message
	from := msg.From

	verifyChatID := h.Config.GetInt64("VerifyChatID")
	if msg.Chat.Type != "private" && msg.Chat.ID != verifyChatID {
		return
	}

	form, filled := ParseForm(msg.Text)
	if !filled {
		h.reply(ctx, b, msg, formUsageText)
		return
	}

	guildID := h.Config.GetInt64("GuildID")
	approvalChatID := h.Config.GetInt64("ApprovalChatID")
	if approvalChatID == 0 {
		// admins get the specific cause, the user only a generic notice
		_ = h.Notifier.NotifyAdmins(ctx, guildID, "verification misconfigured: ApprovalChatID is not set")
		h.reply(ctx, b, msg, submitFailedText)
		return
	}

	in := verify.SubmitInput{
		GuildID:       guildID,
		UserID:        from.ID,
		PlatformNames: platformNames(from),
		Form:          form,
	}

	req, err := h.Service.BeginSubmission(ctx, in)
	if err != nil {
		h.reply(ctx, b, msg, submitErrorText(err))
		return
	}

	card, err := telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, &telego.SendMessageParams{
		ChatID:      telego.ChatID{ID: approvalChatID},
		Text:        approvalCardText(req, from),
		ReplyMarkup: decisionKeyboard(),
	})
	if err != nil || card == nil {
		h.Service.AbortSubmission(ctx, req.GuildID, req.UserID, fmt.Errorf("post approval card: %w", err))
		h.reply(ctx, b, msg, submitFailedText)
		return
	}

	req.ChannelID = approvalChatID
	req.MessageID = int64(card.MessageID)
	if err := h.Service.RecordSubmission(ctx, req); err != nil {
		// pending slot already rolled back by the service
		h.reply(ctx, b, msg, submitFailedText)
		return
	}

	if h.Logger != nil {
		h.Logger.Info("verification submitted",
			"user_id", from.ID, "card_message_id", req.MessageID, "risk_tier", req.RiskTier)
	}
	h.reply(ctx, b, msg, submittedText)
}

func (h *VerifyHandler) reply(ctx context.Context, b *telego.Bot, msg *telego.Message, text string) {
	_, _ = telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, &telego.SendMessageParams{
		ChatID:          telego.ChatID{ID: msg.Chat.ID},
		Text:            text,
		ReplyParameters: &telego.ReplyParameters{MessageID: msg.MessageID},
	})
}

// platformNames snapshots every display name the submitter carries, for
// the nickname-must-differ check.
func platformNames(from *telego.User) []string {
	var names []string
	full := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if full != "" {
		names = append(names, full)
	}
	if from.FirstName != "" && from.FirstName != full {
		names = append(names, from.FirstName)
	}
	if from.Username != "" {
		names = append(names, from.Username)
	}
	return names
}

func submitErrorText(err error) string {
	var vErr *verify.ValidationError
	if errors.As(err, &vErr) {
		switch vErr.Reason {
		case verify.ReasonInvalidAge:
			return invalidAgeText
		case verify.ReasonInvalidNickname:
			return invalidNicknameText
		case verify.ReasonNicknameMatchesOwnName:
			return nicknameClashText
		case verify.ReasonInvalidGender:
			return invalidGenderText
		case verify.ReasonInvalidBirthday:
			return invalidBirthdayText
		}
	}
	switch {
	case errors.Is(err, verify.ErrAlreadyPending):
		return alreadyPendingText
	case errors.Is(err, verify.ErrAlreadyVerified):
		return alreadyVerifiedText
	default:
		return submitFailedText
	}
}

func approvalCardText(req *botpkg.VerificationRequest, from *telego.User) string {
	var sb strings.Builder
	sb.WriteString(cardHeaderText)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "ผู้ใช้ / user: %s (id %d)\n", strings.TrimSpace(from.FirstName+" "+from.LastName), from.ID)
	if from.Username != "" {
		fmt.Fprintf(&sb, "@%s\n", from.Username)
	}
	writeField(&sb, "ชื่อเล่น / nickname", req.Nickname)
	writeField(&sb, "อายุ / age", req.AgeText)
	writeField(&sb, "เพศ / gender", req.GenderText)
	writeField(&sb, "วันเกิด / birthday", req.BirthdayText)
	if req.RiskTier != botpkg.RiskLow {
		fmt.Fprintf(&sb, "\n⚠ risk: %s", req.RiskTier)
	}
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(sb, "%s: %s\n", label, value)
}

func decisionKeyboard() *telego.InlineKeyboardMarkup {
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{{
			{Text: approveButtonText, CallbackData: "verify approve"},
			{Text: rejectButtonText, CallbackData: "verify reject"},
		}},
	}
}
