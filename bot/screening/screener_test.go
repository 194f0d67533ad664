package screening

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nopparoot15/Saltybot/bot"
)

func intPtr(v int) *int { return &v }

func TestHeuristicTiers(t *testing.T) {
	h := NewHeuristic(7, 30)
	ctx := context.Background()

	cases := []struct {
		name string
		days *int
		want bot.RiskTier
	}{
		{"unknown age", nil, bot.RiskUnknown},
		{"brand new", intPtr(0), bot.RiskHigh},
		{"six days", intPtr(6), bot.RiskHigh},
		{"one week", intPtr(7), bot.RiskMed},
		{"four weeks", intPtr(29), bot.RiskMed},
		{"one month", intPtr(30), bot.RiskLow},
		{"old account", intPtr(4000), bot.RiskLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tier, reasons := h.Assess(ctx, 1, tc.days)
			if tier != tc.want {
				t.Fatalf("days=%v: expected %s, got %s", tc.days, tc.want, tier)
			}
			if tier != bot.RiskLow && len(reasons) == 0 {
				t.Fatalf("non-low tier must carry a reason")
			}
		})
	}
}

func TestRemoteVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tier":"HIGH","reasons":["flagged by service"]}`))
	}))
	defer server.Close()

	remote := NewRemote(server.URL, time.Second, NewHeuristic(7, 30), nil)
	tier, reasons := remote.Assess(context.Background(), 1, intPtr(4000))
	if tier != bot.RiskHigh {
		t.Fatalf("expected remote HIGH to win, got %s", tier)
	}
	if len(reasons) != 1 || reasons[0] != "flagged by service" {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
}

func TestRemoteFallsBackOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	remote := NewRemote(server.URL, time.Second, NewHeuristic(7, 30), nil)
	tier, _ := remote.Assess(context.Background(), 1, intPtr(3))
	if tier != bot.RiskHigh {
		t.Fatalf("expected heuristic fallback HIGH, got %s", tier)
	}
}

func TestRemoteDisabledUsesFallback(t *testing.T) {
	remote := NewRemote("", time.Second, NewHeuristic(7, 30), nil)
	tier, _ := remote.Assess(context.Background(), 1, intPtr(365))
	if tier != bot.RiskLow {
		t.Fatalf("expected fallback LOW, got %s", tier)
	}
}
