package bot

import (
	"context"
	"errors"
)

// ErrForbidden reports that the platform refused a role mutation for lack
// of privilege. It is surfaced to the moderator and never retried.
var ErrForbidden = errors.New("insufficient privilege")

// Logger is the minimal logging abstraction used across modules.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config provides typed access to configuration values.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetBool(key string) bool
}

// VerifyRepository defines storage operations for verification requests.
type VerifyRepository interface {
	InsertRequest(ctx context.Context, req *VerificationRequest) (uint, error)
	// SetRequestStatus transitions the request identified by the approval
	// card message id into a terminal status. It is conditional: the write
	// happens only while the current status is Submitted, and the return
	// value reports whether this call performed the transition.
	SetRequestStatus(ctx context.Context, messageID int64, status RequestStatus, decidedBy int64) (bool, error)
	FindRequestByMessageID(ctx context.Context, messageID int64) (*VerificationRequest, error)
	CountRequestsByStatus(ctx context.Context, guildID int64) (map[RequestStatus]int64, error)
	UpsertMemberProfile(ctx context.Context, profile *MemberProfile) error
	SetLatestApproval(ctx context.Context, ptr *ApprovalPointer) error
	LatestApproval(ctx context.Context, guildID, userID int64) (*ApprovalPointer, error)
}

// RoleDirectory exposes the guild's role assignments. Add and Remove may
// fail with ErrForbidden.
type RoleDirectory interface {
	MemberRoles(ctx context.Context, guildID, userID int64) ([]RoleBucket, error)
	AddRoles(ctx context.Context, guildID, userID int64, buckets []RoleBucket, reason string) error
	RemoveRoles(ctx context.Context, guildID, userID int64, buckets []RoleBucket, reason string) error
}

// Notifier delivers best-effort side-channel messages. Callers decide
// whether a returned error matters; most ignore it.
type Notifier interface {
	NotifyAdmins(ctx context.Context, guildID int64, text string) error
	NotifyUser(ctx context.Context, userID int64, text string) error
}

// Screener produces an account risk snapshot for a submitting user.
type Screener interface {
	Assess(ctx context.Context, userID int64, accountAgeDays *int) (RiskTier, []string)
}

// WorkerPool limits concurrency for background tasks.
type WorkerPool interface {
	Submit(task func()) error
	Shutdown(ctx context.Context) error
	Size() int
}
