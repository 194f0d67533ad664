package verify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nopparoot15/Saltybot/bot"
)

type fakeRepo struct {
	mu          sync.Mutex
	nextID      uint
	requests    map[int64]*bot.VerificationRequest
	pointers    map[[2]int64]*bot.ApprovalPointer
	profiles    map[[2]int64]*bot.MemberProfile
	insertErr   error
	transitions int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		requests: make(map[int64]*bot.VerificationRequest),
		pointers: make(map[[2]int64]*bot.ApprovalPointer),
		profiles: make(map[[2]int64]*bot.MemberProfile),
	}
}

func (r *fakeRepo) InsertRequest(_ context.Context, req *bot.VerificationRequest) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	r.nextID++
	req.ID = r.nextID
	clone := *req
	r.requests[req.MessageID] = &clone
	return req.ID, nil
}

func (r *fakeRepo) SetRequestStatus(_ context.Context, messageID int64, status bot.RequestStatus, decidedBy int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[messageID]
	if !ok {
		return false, fmt.Errorf("no request for message %d", messageID)
	}
	if req.Status != bot.StatusSubmitted {
		return false, nil
	}
	req.Status = status
	req.DecidedBy = decidedBy
	r.transitions++
	return true, nil
}

func (r *fakeRepo) FindRequestByMessageID(_ context.Context, messageID int64) (*bot.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[messageID]
	if !ok {
		return nil, fmt.Errorf("no request for message %d", messageID)
	}
	clone := *req
	return &clone, nil
}

func (r *fakeRepo) CountRequestsByStatus(_ context.Context, _ int64) (map[bot.RequestStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[bot.RequestStatus]int64)
	for _, req := range r.requests {
		out[req.Status]++
	}
	return out, nil
}

func (r *fakeRepo) UpsertMemberProfile(_ context.Context, p *bot.MemberProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.profiles[[2]int64{p.GuildID, p.UserID}] = &clone
	return nil
}

func (r *fakeRepo) SetLatestApproval(_ context.Context, ptr *bot.ApprovalPointer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *ptr
	r.pointers[[2]int64{ptr.GuildID, ptr.UserID}] = &clone
	return nil
}

func (r *fakeRepo) LatestApproval(_ context.Context, guildID, userID int64) (*bot.ApprovalPointer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ptr, ok := r.pointers[[2]int64{guildID, userID}]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *ptr
	return &clone, nil
}

type fakeRoles struct {
	mu      sync.Mutex
	held    map[int64]map[bot.RoleBucket]struct{}
	addErr  error
	adds    int
	removes int
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{held: make(map[int64]map[bot.RoleBucket]struct{})}
}

func (f *fakeRoles) grant(userID int64, buckets ...bot.RoleBucket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[userID] == nil {
		f.held[userID] = make(map[bot.RoleBucket]struct{})
	}
	for _, b := range buckets {
		f.held[userID][b] = struct{}{}
	}
}

func (f *fakeRoles) MemberRoles(_ context.Context, _, userID int64) ([]bot.RoleBucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bot.RoleBucket
	for b := range f.held[userID] {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRoles) AddRoles(_ context.Context, _, userID int64, buckets []bot.RoleBucket, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	if f.held[userID] == nil {
		f.held[userID] = make(map[bot.RoleBucket]struct{})
	}
	for _, b := range buckets {
		f.held[userID][b] = struct{}{}
	}
	f.adds++
	return nil
}

func (f *fakeRoles) RemoveRoles(_ context.Context, _, userID int64, buckets []bot.RoleBucket, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range buckets {
		delete(f.held[userID], b)
	}
	f.removes++
	return nil
}

func (f *fakeRoles) has(userID int64, b bot.RoleBucket) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.held[userID][b]
	return ok
}

type fakeNotifier struct {
	mu      sync.Mutex
	admin   []string
	user    []string
	userErr error
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admin = append(f.admin, text)
	return nil
}

func (f *fakeNotifier) NotifyUser(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userErr != nil {
		return f.userErr
	}
	f.user = append(f.user, text)
	return nil
}

func (f *fakeNotifier) adminCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.admin)
}

type fakeScreener struct {
	tier    bot.RiskTier
	reasons []string
}

func (f *fakeScreener) Assess(_ context.Context, _ int64, _ *int) (bot.RiskTier, []string) {
	return f.tier, f.reasons
}

func testNow() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, bkk)
}

func newTestService() (*Service, *fakeRepo, *fakeRoles, *fakeNotifier) {
	repo := newFakeRepo()
	roles := newFakeRoles()
	notify := &fakeNotifier{}
	svc := NewService(repo, roles, notify, &fakeScreener{tier: bot.RiskLow}, nil, testNow)
	return svc, repo, roles, notify
}

func submit(t *testing.T, svc *Service, form Submission) *bot.VerificationRequest {
	t.Helper()
	req, err := svc.BeginSubmission(context.Background(), SubmitInput{
		GuildID: 100, UserID: 200, Form: form,
	})
	if err != nil {
		t.Fatalf("begin submission: %v", err)
	}
	req.ChannelID = 300
	req.MessageID = 400
	if err := svc.RecordSubmission(context.Background(), req); err != nil {
		t.Fatalf("record submission: %v", err)
	}
	return req
}

func TestSubmissionLifecycle(t *testing.T) {
	svc, repo, roles, _ := newTestService()
	ctx := context.Background()

	form := Submission{
		Nickname: "Mango", AgeText: "", GenderText: "ชาย", BirthdayText: "01/01/2000",
	}
	submit(t, svc, form)

	if !svc.IsPending(200) {
		t.Fatal("submitter should be pending")
	}
	if _, err := svc.BeginSubmission(ctx, SubmitInput{GuildID: 100, UserID: 200, Form: form}); !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("expected ErrAlreadyPending, got %v", err)
	}

	ptr, err := repo.LatestApproval(ctx, 100, 200)
	if err != nil || ptr.MessageID != 400 {
		t.Fatalf("approval pointer not recorded: %v %+v", err, ptr)
	}

	out, err := svc.Approve(ctx, 400, 999)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if out.AlreadyDecided {
		t.Fatal("first decision must apply")
	}
	if out.GenderBucket != bot.BucketMale {
		t.Fatalf("gender bucket %v, want male", out.GenderBucket)
	}
	// birthday 01/01/2000 at 2024-06-15 means age 24
	if out.AgeBucket != bot.BucketAge22To24 {
		t.Fatalf("age bucket %v, want 22-24", out.AgeBucket)
	}
	for _, b := range []bot.RoleBucket{bot.BucketVerified, bot.BucketMale, bot.BucketAge22To24} {
		if !roles.has(200, b) {
			t.Fatalf("member missing %v after approval", b)
		}
	}
	if svc.IsPending(200) {
		t.Fatal("pending entry must clear on decision")
	}

	// terminal record allows a fresh submission
	if _, err := svc.BeginSubmission(ctx, SubmitInput{GuildID: 100, UserID: 201, Form: form}); err != nil {
		t.Fatalf("fresh submission after decision: %v", err)
	}
}

func TestBirthdayBucketOutranksAgeText(t *testing.T) {
	svc, _, _, _ := newTestService()

	submit(t, svc, Submission{AgeText: "30", BirthdayText: "01/01/2000"})
	out, err := svc.Approve(context.Background(), 400, 999)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if out.AgeBucket != bot.BucketAge22To24 {
		t.Fatalf("age bucket %v, want 22-24 from birthday", out.AgeBucket)
	}
}

func TestSingleBucketPerAxis(t *testing.T) {
	svc, _, roles, _ := newTestService()
	roles.grant(200, bot.BucketFemale, bot.BucketAge16To18)

	submit(t, svc, Submission{GenderText: "ชาย", AgeText: "21"})
	if _, err := svc.Approve(context.Background(), 400, 999); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if roles.has(200, bot.BucketFemale) || roles.has(200, bot.BucketAge16To18) {
		t.Fatal("stale axis roles must be removed")
	}
	if !roles.has(200, bot.BucketMale) || !roles.has(200, bot.BucketAge19To21) {
		t.Fatal("resolved buckets must be assigned")
	}
}

func TestAlreadyVerifiedRefused(t *testing.T) {
	svc, _, roles, _ := newTestService()
	roles.grant(200, bot.BucketVerified)

	_, err := svc.BeginSubmission(context.Background(), SubmitInput{GuildID: 100, UserID: 200})
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestRejectTouchesNoRoles(t *testing.T) {
	svc, repo, roles, _ := newTestService()

	submit(t, svc, Submission{GenderText: "หญิง"})
	out, err := svc.Reject(context.Background(), 400, 999)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if out.AlreadyDecided {
		t.Fatal("first decision must apply")
	}
	if roles.adds != 0 || roles.removes != 0 {
		t.Fatalf("reject mutated roles: %d adds %d removes", roles.adds, roles.removes)
	}
	if repo.transitions != 1 {
		t.Fatalf("expected one transition, got %d", repo.transitions)
	}
	if svc.IsPending(200) {
		t.Fatal("pending entry must clear on rejection")
	}
}

func TestDuplicateDecisionIsNoOp(t *testing.T) {
	svc, repo, roles, _ := newTestService()

	submit(t, svc, Submission{GenderText: "ชาย"})
	if _, err := svc.Approve(context.Background(), 400, 999); err != nil {
		t.Fatalf("approve: %v", err)
	}
	addsAfterFirst := roles.adds

	out, err := svc.Reject(context.Background(), 400, 888)
	if err != nil {
		t.Fatalf("reject after approve: %v", err)
	}
	if !out.AlreadyDecided {
		t.Fatal("second decision must observe the decided state")
	}
	if repo.transitions != 1 || roles.adds != addsAfterFirst {
		t.Fatalf("duplicate decision mutated state: transitions=%d adds=%d", repo.transitions, roles.adds)
	}
}

func TestConcurrentApproveRejectSingleWinner(t *testing.T) {
	svc, repo, roles, _ := newTestService()

	submit(t, svc, Submission{GenderText: "ชาย", AgeText: "21"})

	var wg sync.WaitGroup
	outcomes := make([]*DecisionOutcome, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		outcomes[0], _ = svc.Approve(context.Background(), 400, 1)
	}()
	go func() {
		defer wg.Done()
		outcomes[1], _ = svc.Reject(context.Background(), 400, 2)
	}()
	wg.Wait()

	if repo.transitions != 1 {
		t.Fatalf("expected exactly one terminal transition, got %d", repo.transitions)
	}
	decided := 0
	for _, out := range outcomes {
		if out != nil && !out.AlreadyDecided {
			decided++
		}
	}
	if decided != 1 {
		t.Fatalf("expected exactly one winning decision, got %d", decided)
	}
	req, err := repo.FindRequestByMessageID(context.Background(), 400)
	if err != nil {
		t.Fatalf("find request: %v", err)
	}
	if req.Status == bot.StatusRejected && roles.adds != 0 {
		t.Fatal("losing approve still mutated roles")
	}
}

func TestRecordSubmissionRollsBackOnError(t *testing.T) {
	svc, repo, _, notify := newTestService()
	repo.insertErr = errors.New("disk full")

	req, err := svc.BeginSubmission(context.Background(), SubmitInput{GuildID: 100, UserID: 200})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	req.MessageID = 400
	if err := svc.RecordSubmission(context.Background(), req); err == nil {
		t.Fatal("expected persistence error")
	}
	if svc.IsPending(200) {
		t.Fatal("pending entry must roll back on failure")
	}
	if notify.adminCount() == 0 {
		t.Fatal("admins must be notified of the failure")
	}

	// the rollback frees the slot for a retry
	repo.insertErr = nil
	if _, err := svc.BeginSubmission(context.Background(), SubmitInput{GuildID: 100, UserID: 200}); err != nil {
		t.Fatalf("retry after rollback: %v", err)
	}
}

func TestForbiddenSurfaced(t *testing.T) {
	svc, _, roles, _ := newTestService()
	roles.addErr = bot.ErrForbidden

	submit(t, svc, Submission{GenderText: "ชาย"})
	_, err := svc.Approve(context.Background(), 400, 999)
	if !errors.Is(err, bot.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
