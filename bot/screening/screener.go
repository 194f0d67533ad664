// Package screening classifies submitting accounts into risk tiers.
// Classification is advisory: it never blocks a submission, it only
// flags the approval card and pings admins for high risk accounts.
package screening

import (
	"context"
	"fmt"

	"github.com/nopparoot15/Saltybot/bot"
)

// Heuristic screens accounts by age alone. Fresh accounts are the main
// evasion vector for re-submitting after a rejection.
type Heuristic struct {
	highDays int
	medDays  int
}

// NewHeuristic creates an age-based screener. Accounts younger than
// highDays are HIGH risk, younger than medDays are MED, the rest LOW.
func NewHeuristic(highDays, medDays int) *Heuristic {
	if highDays <= 0 {
		highDays = 7
	}
	if medDays <= highDays {
		medDays = highDays + 1
	}
	return &Heuristic{highDays: highDays, medDays: medDays}
}

// Assess implements bot.Screener.
func (h *Heuristic) Assess(ctx context.Context, userID int64, accountAgeDays *int) (bot.RiskTier, []string) {
	if accountAgeDays == nil {
		return bot.RiskUnknown, []string{"account age unknown"}
	}
	days := *accountAgeDays
	switch {
	case days < h.highDays:
		return bot.RiskHigh, []string{fmt.Sprintf("account younger than %dd", h.highDays)}
	case days < h.medDays:
		return bot.RiskMed, []string{fmt.Sprintf("account younger than %dd", h.medDays)}
	default:
		return bot.RiskLow, nil
	}
}
