package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mymmrac/telego"

	botpkg "github.com/nopparoot15/Saltybot/bot"
	"github.com/nopparoot15/Saltybot/bot/telegram"
	"github.com/nopparoot15/Saltybot/bot/verify"
)

// DecisionHandler processes approve/reject button presses on approval
// cards. The card's own message id is the decision token.
type DecisionHandler struct {
	Service     *verify.Service
	Notifier    botpkg.Notifier
	RateLimiter *telegram.RateLimiter
	Logger      botpkg.Logger
	AdminIDs    map[int64]struct{}
	Location    *time.Location
}

type parsedDecision struct {
	approve bool
	ok      bool
}

func parseDecisionCallback(data string) parsedDecision {
	args := strings.Fields(data)
	if len(args) != 2 || args[0] != "verify" {
		return parsedDecision{}
	}
	switch args[1] {
	case "approve":
		return parsedDecision{approve: true, ok: true}
	case "reject":
		return parsedDecision{approve: false, ok: true}
	default:
		return parsedDecision{}
	}
}

func (h *DecisionHandler) Handle(ctx context.Context, b *telego.Bot, update *telego.Update) {
	if update == nil || update.CallbackQuery == nil {
		return
	}
	query := update.CallbackQuery

	parsed := parseDecisionCallback(query.Data)
	if !parsed.ok {
		return
	}

	var msg *telego.Message
	if query.Message != nil {
		msg = query.Message.Message()
	}
	if msg == nil {
		h.answer(ctx, b, query.ID, cardUnknownText, true)
		return
	}

	if !h.isModerator(ctx, b, msg.Chat.ID, query.From.ID) {
		h.answer(ctx, b, query.ID, decisionDeniedText, true)
		return
	}

	messageID := int64(msg.MessageID)
	var outcome *verify.DecisionOutcome
	var err error
	if parsed.approve {
		outcome, err = h.Service.Approve(ctx, messageID, query.From.ID)
	} else {
		outcome, err = h.Service.Reject(ctx, messageID, query.From.ID)
	}
	if err != nil {
		h.answer(ctx, b, query.ID, decisionErrorText(err), true)
		if h.Logger != nil {
			h.Logger.Error("decision failed", "message_id", messageID, "error", err)
		}
		if errors.Is(err, botpkg.ErrForbidden) {
			_ = h.Notifier.NotifyAdmins(ctx, 0,
				fmt.Sprintf("role mutation refused for card %d: %v", messageID, err))
		}
		return
	}
	if outcome.AlreadyDecided {
		h.answer(ctx, b, query.ID, alreadyDecidedText, false)
		return
	}

	status := botpkg.StatusRejected
	if parsed.approve {
		status = botpkg.StatusApproved
	}
	h.editCard(ctx, b, msg, status, &query.From)

	dmText := rejectedUserText
	if parsed.approve {
		dmText = approvedUserText
	}
	if dmErr := h.Notifier.NotifyUser(ctx, outcome.Request.UserID, dmText); dmErr != nil {
		// the decision stands even when the DM cannot be delivered
		if h.Logger != nil {
			h.Logger.Warn("decision DM failed", "user_id", outcome.Request.UserID, "error", dmErr)
		}
		h.answer(ctx, b, query.ID, dmFailedWarningText, true)
		return
	}

	h.answer(ctx, b, query.ID, decisionDoneText, false)
}

// editCard appends the decision line and drops the buttons so the card
// documents who decided and when.
func (h *DecisionHandler) editCard(ctx context.Context, b *telego.Bot, msg *telego.Message, status botpkg.RequestStatus, moderator *telego.User) {
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}
	stamp := time.Now().In(loc).Format("02/01/2006 15:04")

	verdict := "❌ ปฏิเสธ / rejected"
	if status == botpkg.StatusApproved {
		verdict = "✅ อนุมัติ / approved"
	}
	text := fmt.Sprintf("%s\n\n%s โดย %s (id %d) เมื่อ %s",
		msg.Text, verdict, strings.TrimSpace(moderator.FirstName+" "+moderator.LastName), moderator.ID, stamp)

	_, err := telegram.EditMessageTextWithRetry(ctx, h.RateLimiter, b, &telego.EditMessageTextParams{
		ChatID:    telego.ChatID{ID: msg.Chat.ID},
		MessageID: msg.MessageID,
		Text:      text,
	})
	if err != nil && !telegram.IsMessageNotModified(err) && h.Logger != nil {
		h.Logger.Warn("card edit failed", "message_id", msg.MessageID, "error", err)
	}
}

// isModerator accepts configured bot admins and chat administrators.
func (h *DecisionHandler) isModerator(ctx context.Context, b *telego.Bot, chatID, userID int64) bool {
	if isBotAdmin(h.AdminIDs, userID) {
		return true
	}
	member, err := b.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	})
	if err != nil || member == nil {
		return false
	}
	switch member.MemberStatus() {
	case telego.MemberStatusCreator, telego.MemberStatusAdministrator:
		return true
	default:
		return false
	}
}

func (h *DecisionHandler) answer(ctx context.Context, b *telego.Bot, queryID, text string, alert bool) {
	_ = b.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       alert,
	})
}

func decisionErrorText(err error) string {
	switch {
	case errors.Is(err, verify.ErrRequestNotFound):
		return cardUnknownText
	case errors.Is(err, botpkg.ErrForbidden):
		return noPermissionText
	default:
		return decisionFailedText
	}
}

func isBotAdmin(adminIDs map[int64]struct{}, userID int64) bool {
	if len(adminIDs) == 0 {
		return false
	}
	_, ok := adminIDs[userID]
	return ok
}
