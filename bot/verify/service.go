package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nopparoot15/Saltybot/bot"
)

var (
	// ErrAlreadyPending rejects a resubmission while a request is open.
	ErrAlreadyPending = errors.New("verification already pending")
	// ErrAlreadyVerified refuses members who already hold the verified role.
	ErrAlreadyVerified = errors.New("member already verified")
	// ErrRequestNotFound means no request matches the decision token.
	ErrRequestNotFound = errors.New("verification request not found")
)

// pendingSet tracks submitters with an open request. CheckAndAdd is a
// single critical section so two interleaved submissions cannot both pass
// the membership check.
type pendingSet struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func (p *pendingSet) CheckAndAdd(userID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ids == nil {
		p.ids = make(map[int64]struct{})
	}
	if _, open := p.ids[userID]; open {
		return false
	}
	p.ids[userID] = struct{}{}
	return true
}

func (p *pendingSet) Remove(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ids, userID)
}

func (p *pendingSet) Has(userID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, open := p.ids[userID]
	return open
}

// Service orchestrates submissions and moderator decisions.
type Service struct {
	repo    bot.VerifyRepository
	roles   bot.RoleDirectory
	notify  bot.Notifier
	screen  bot.Screener
	logger  bot.Logger
	locks   *DecisionLocks
	pending pendingSet
	now     func() time.Time
}

// NewService wires the verification service. now supplies the reference
// time in the guild's fixed local zone.
func NewService(repo bot.VerifyRepository, roles bot.RoleDirectory, notify bot.Notifier, screen bot.Screener, logger bot.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   repo,
		roles:  roles,
		notify: notify,
		screen: screen,
		logger: logger,
		locks:  NewDecisionLocks(),
		now:    now,
	}
}

// SubmitInput is one raw form submission plus the platform-name snapshot
// used by the duplicate-name check.
type SubmitInput struct {
	GuildID        int64
	UserID         int64
	PlatformNames  []string
	AccountAgeDays *int
	Form           Submission
}

// BeginSubmission validates the form and reserves the submitter's pending
// slot. Guard order matters: already-verified and validation run before
// the pending set is touched, and the check-then-set on the pending set is
// atomic, so a failed submission never leaves a stale entry.
func (s *Service) BeginSubmission(ctx context.Context, in SubmitInput) (*bot.VerificationRequest, error) {
	current, err := s.roles.MemberRoles(ctx, in.GuildID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("member roles: %w", err)
	}
	for _, r := range current {
		if r == bot.BucketVerified {
			return nil, ErrAlreadyVerified
		}
	}

	form, err := ValidateSubmission(in.Form, in.PlatformNames, s.now())
	if err != nil {
		return nil, err
	}

	if !s.pending.CheckAndAdd(in.UserID) {
		return nil, ErrAlreadyPending
	}

	tier := bot.RiskUnknown
	var reasons []string
	if s.screen != nil {
		tier, reasons = s.screen.Assess(ctx, in.UserID, in.AccountAgeDays)
	}
	if tier == bot.RiskHigh {
		// best-effort, the submission proceeds either way
		_ = s.notify.NotifyAdmins(ctx, in.GuildID,
			fmt.Sprintf("high-risk submission from user %d (%s)", in.UserID, strings.Join(reasons, ", ")))
	}

	return &bot.VerificationRequest{
		GuildID:        in.GuildID,
		UserID:         in.UserID,
		Nickname:       form.Nickname,
		AgeText:        form.AgeText,
		GenderText:     form.GenderText,
		BirthdayText:   form.BirthdayText,
		AccountAgeDays: in.AccountAgeDays,
		RiskTier:       tier,
		Status:         bot.StatusSubmitted,
	}, nil
}

// RecordSubmission persists the request after the approval card has been
// posted (req.MessageID points at the card). Any failure rolls the pending
// entry back so the submitter may retry.
func (s *Service) RecordSubmission(ctx context.Context, req *bot.VerificationRequest) error {
	if _, err := s.repo.InsertRequest(ctx, req); err != nil {
		s.rollback(ctx, req.GuildID, req.UserID, fmt.Errorf("insert request: %w", err))
		return fmt.Errorf("insert request: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if req.MessageID != 0 {
		g.Go(func() error {
			return s.repo.SetLatestApproval(gctx, &bot.ApprovalPointer{
				GuildID:   req.GuildID,
				UserID:    req.UserID,
				ChannelID: req.ChannelID,
				MessageID: req.MessageID,
			})
		})
	}
	g.Go(func() error {
		return s.repo.UpsertMemberProfile(gctx, &bot.MemberProfile{
			GuildID:      req.GuildID,
			UserID:       req.UserID,
			Nickname:     req.Nickname,
			AgeText:      req.AgeText,
			GenderText:   req.GenderText,
			BirthdayText: req.BirthdayText,
		})
	})
	if err := g.Wait(); err != nil {
		s.rollback(ctx, req.GuildID, req.UserID, err)
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

// AbortSubmission rolls back a reserved pending slot when the caller fails
// between BeginSubmission and RecordSubmission.
func (s *Service) AbortSubmission(ctx context.Context, guildID, userID int64, cause error) {
	s.rollback(ctx, guildID, userID, cause)
}

func (s *Service) rollback(ctx context.Context, guildID, userID int64, cause error) {
	s.pending.Remove(userID)
	if s.logger != nil {
		s.logger.Error("submission failed, pending entry rolled back", "user_id", userID, "error", cause)
	}
	_ = s.notify.NotifyAdmins(ctx, guildID, fmt.Sprintf("submission error for user %d: %v", userID, cause))
}

// IsPending reports whether the user has an open request.
func (s *Service) IsPending(userID int64) bool {
	return s.pending.Has(userID)
}

// DecisionOutcome reports what a moderator action changed.
type DecisionOutcome struct {
	Request        *bot.VerificationRequest
	AlreadyDecided bool
	GenderBucket   bot.RoleBucket
	AgeBucket      bot.RoleBucket // empty when unresolved
}

// Approve applies the request's resolved role set and transitions it to
// approved. It holds the per-card decision lock for the whole critical
// section; a duplicate or racing action observes the decided state and
// mutates nothing.
func (s *Service) Approve(ctx context.Context, messageID, moderatorID int64) (*DecisionOutcome, error) {
	release := s.locks.Acquire(messageID)
	defer release()

	req, err := s.repo.FindRequestByMessageID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: message %d", ErrRequestNotFound, messageID)
	}
	if req.Status != bot.StatusSubmitted {
		return &DecisionOutcome{Request: req, AlreadyDecided: true}, nil
	}

	now := s.now()
	gender := ResolveGenderBucket(req.GenderText)
	ageBucket, ageResolved := ResolveAgeBuckets(req.AgeText, req.BirthdayText, now)

	current, err := s.roles.MemberRoles(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("member roles: %w", err)
	}
	held := make(map[bot.RoleBucket]struct{}, len(current))
	for _, r := range current {
		held[r] = struct{}{}
	}

	var removeGender []bot.RoleBucket
	for _, r := range current {
		if bot.IsGenderBucket(r) && r != gender {
			removeGender = append(removeGender, r)
		}
	}
	if len(removeGender) > 0 {
		if err := s.roles.RemoveRoles(ctx, req.GuildID, req.UserID, removeGender, "verification: enforce single gender role"); err != nil {
			return nil, fmt.Errorf("remove gender roles: %w", err)
		}
	}

	if ageResolved {
		var removeAge []bot.RoleBucket
		for _, r := range current {
			if bot.IsAgeBucket(r) && r != ageBucket {
				removeAge = append(removeAge, r)
			}
		}
		if len(removeAge) > 0 {
			if err := s.roles.RemoveRoles(ctx, req.GuildID, req.UserID, removeAge, "verification: enforce single age role"); err != nil {
				return nil, fmt.Errorf("remove age roles: %w", err)
			}
		}
	}

	var toAdd []bot.RoleBucket
	wanted := []bot.RoleBucket{bot.BucketVerified, gender}
	if ageResolved {
		wanted = append(wanted, ageBucket)
	}
	for _, b := range wanted {
		if _, has := held[b]; !has {
			toAdd = append(toAdd, b)
		}
	}
	if len(toAdd) > 0 {
		if err := s.roles.AddRoles(ctx, req.GuildID, req.UserID, toAdd, "verified"); err != nil {
			return nil, fmt.Errorf("add roles: %w", err)
		}
	}

	applied, err := s.repo.SetRequestStatus(ctx, messageID, bot.StatusApproved, moderatorID)
	if err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	if !applied {
		return &DecisionOutcome{Request: req, AlreadyDecided: true}, nil
	}
	s.pending.Remove(req.UserID)

	outcome := &DecisionOutcome{Request: req, GenderBucket: gender}
	if ageResolved {
		outcome.AgeBucket = ageBucket
	}
	return outcome, nil
}

// Reject transitions the request to rejected without touching roles.
func (s *Service) Reject(ctx context.Context, messageID, moderatorID int64) (*DecisionOutcome, error) {
	release := s.locks.Acquire(messageID)
	defer release()

	req, err := s.repo.FindRequestByMessageID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: message %d", ErrRequestNotFound, messageID)
	}
	if req.Status != bot.StatusSubmitted {
		return &DecisionOutcome{Request: req, AlreadyDecided: true}, nil
	}

	applied, err := s.repo.SetRequestStatus(ctx, messageID, bot.StatusRejected, moderatorID)
	if err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	if !applied {
		return &DecisionOutcome{Request: req, AlreadyDecided: true}, nil
	}
	s.pending.Remove(req.UserID)
	return &DecisionOutcome{Request: req}, nil
}
