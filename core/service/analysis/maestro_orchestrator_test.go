package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mailmaestro/core/domain"
)

// ============================================================
// Fakes
// ============================================================

type fakeEmailRepo struct {
	mu       sync.Mutex
	emails   map[int64]*domain.Email
	analyses map[int64]*domain.AnalysisResult
	failIDs  map[int64]bool
}

func newFakeEmailRepo(emails ...*domain.Email) *fakeEmailRepo {
	r := &fakeEmailRepo{
		emails:   make(map[int64]*domain.Email),
		analyses: make(map[int64]*domain.AnalysisResult),
		failIDs:  make(map[int64]bool),
	}
	for _, e := range emails {
		r.emails[e.ID] = e
	}
	return r
}

func (r *fakeEmailRepo) GetByID(_ context.Context, id int64) (*domain.Email, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emails[id], nil
}

func (r *fakeEmailRepo) GetByIDs(_ context.Context, userID uuid.UUID, ids []int64) ([]*domain.Email, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*domain.Email
	for _, id := range ids {
		if e, ok := r.emails[id]; ok && e.UserID == userID {
			found = append(found, e)
		}
	}
	return found, nil
}

func (r *fakeEmailRepo) List(context.Context, *domain.EmailFilter) ([]*domain.Email, int, error) {
	return nil, 0, nil
}
func (r *fakeEmailRepo) Create(_ context.Context, e *domain.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails[e.ID] = e
	return nil
}
func (r *fakeEmailRepo) Update(context.Context, *domain.Email) error { return nil }

func (r *fakeEmailRepo) UpdateAnalysis(_ context.Context, id int64, res *domain.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIDs[id] {
		return fmt.Errorf("update analysis %d: connection reset", id)
	}
	r.analyses[id] = res
	return nil
}

func (r *fakeEmailRepo) SetRead(context.Context, int64, bool) error    { return nil }
func (r *fakeEmailRepo) SetStarred(context.Context, int64, bool) error { return nil }
func (r *fakeEmailRepo) Delete(context.Context, int64) error           { return nil }

type fakeTaskRepo struct {
	mu      sync.Mutex
	created []*domain.Task
	fail    bool
}

func (r *fakeTaskRepo) GetByID(context.Context, int64) (*domain.Task, error) { return nil, nil }
func (r *fakeTaskRepo) List(context.Context, *domain.TaskFilter) ([]*domain.Task, int, error) {
	return nil, 0, nil
}
func (r *fakeTaskRepo) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("insert task: connection reset")
	}
	r.created = append(r.created, t)
	return nil
}
func (r *fakeTaskRepo) Update(context.Context, *domain.Task) error { return nil }
func (r *fakeTaskRepo) UpdateStatus(context.Context, int64, domain.TaskStatus) error {
	return nil
}
func (r *fakeTaskRepo) Delete(context.Context, int64) error { return nil }
func (r *fakeTaskRepo) CreateCorrection(context.Context, *domain.TaskCorrection) error {
	return nil
}
func (r *fakeTaskRepo) ListCorrections(context.Context, int64) ([]*domain.TaskCorrection, error) {
	return nil, nil
}

type fakeEventRepo struct {
	mu      sync.Mutex
	created []*domain.CalendarEvent
	fail    bool
}

func (r *fakeEventRepo) GetByID(context.Context, int64) (*domain.CalendarEvent, error) {
	return nil, nil
}
func (r *fakeEventRepo) List(context.Context, *domain.EventFilter) ([]*domain.CalendarEvent, int, error) {
	return nil, 0, nil
}
func (r *fakeEventRepo) Create(_ context.Context, e *domain.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("insert event: connection reset")
	}
	r.created = append(r.created, e)
	return nil
}
func (r *fakeEventRepo) UpdateStatus(context.Context, int64, domain.EventStatus) error {
	return nil
}
func (r *fakeEventRepo) Delete(context.Context, int64) error { return nil }

// fakeGateway answers per prompt and records peak concurrency.
type fakeGateway struct {
	respond    func(prompt string) (string, error)
	inFlight   atomic.Int32
	maxSeen    atomic.Int32
	totalCalls atomic.Int32
}

func (g *fakeGateway) Analyze(_ context.Context, prompt string) (string, error) {
	cur := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		seen := g.maxSeen.Load()
		if cur <= seen || g.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	g.totalCalls.Add(1)
	time.Sleep(5 * time.Millisecond)
	return g.respond(prompt)
}

func (g *fakeGateway) Structured() bool { return false }

func okResponse(category string) string {
	return fmt.Sprintf(`{"summary": "summary", "category": %q, "priority": "high", "sentiment": "neutral", "action_required": true, "confidence": 0.9, "key_points": ["point"]}`, category)
}

func testEmail(id int64, userID uuid.UUID, subject string) *domain.Email {
	return &domain.Email{
		ID:        id,
		UserID:    userID,
		FromEmail: "sender@corp.example",
		ToEmail:   "me@corp.example",
		Subject:   subject,
		Body:      "body of " + subject,
		Type:      domain.EmailTypeInbox,
	}
}

func newTestService(emails *fakeEmailRepo, tasks *fakeTaskRepo, events *fakeEventRepo, gw *fakeGateway) *Service {
	nop := zerolog.Nop()
	return NewService(emails, tasks, events, gw, &Config{
		BatchSize:  5,
		ChunkDelay: -1, // no pause between chunks in tests
		Logger:     &nop,
	})
}

// ============================================================
// Batch orchestration
// ============================================================

func TestAnalyzeEmailsMixedBatch(t *testing.T) {
	userID := uuid.New()
	var all []*domain.Email
	var ids []int64
	for i := int64(1); i <= 12; i++ {
		all = append(all, testEmail(i, userID, fmt.Sprintf("email %d", i)))
		ids = append(ids, i)
	}
	emailRepo := newFakeEmailRepo(all...)
	taskRepo := &fakeTaskRepo{}
	eventRepo := &fakeEventRepo{}

	gw := &fakeGateway{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "email 11") || strings.Contains(prompt, "email 12") {
			return "", fmt.Errorf("provider: 500 internal error")
		}
		return okResponse("work"), nil
	}}

	svc := newTestService(emailRepo, taskRepo, eventRepo, gw)
	resp, err := svc.AnalyzeEmails(context.Background(), userID, ids)
	if err != nil {
		t.Fatalf("AnalyzeEmails: %v", err)
	}

	if resp.Total != 12 || resp.Succeeded != 10 || resp.Failed != 2 {
		t.Fatalf("total/succeeded/failed = %d/%d/%d, want 12/10/2",
			resp.Total, resp.Succeeded, resp.Failed)
	}
	if gw.maxSeen.Load() > 5 {
		t.Errorf("peak concurrency = %d, want <= 5", gw.maxSeen.Load())
	}

	// Every email got a persisted record, failures included.
	if len(emailRepo.analyses) != 12 {
		t.Fatalf("persisted analyses = %d, want 12", len(emailRepo.analyses))
	}
	for _, id := range []int64{11, 12} {
		res := emailRepo.analyses[id]
		if res.Confidence != domain.FailureConfidence {
			t.Errorf("email %d confidence = %v, want %v", id, res.Confidence, domain.FailureConfidence)
		}
		if res.Category != domain.DefaultCategory {
			t.Errorf("email %d category = %s, want %s", id, res.Category, domain.DefaultCategory)
		}
	}
	if res := emailRepo.analyses[1]; res.Category != domain.CategoryWork {
		t.Errorf("email 1 category = %s, want work", res.Category)
	}
}

func TestAnalyzeEmailsResultsFollowRequestOrder(t *testing.T) {
	userID := uuid.New()
	e1 := testEmail(1, userID, "first")
	e2 := testEmail(2, userID, "second")
	e3 := testEmail(3, userID, "third")
	emailRepo := newFakeEmailRepo(e1, e2, e3)

	gw := &fakeGateway{respond: func(string) (string, error) {
		return okResponse("personal"), nil
	}}
	svc := newTestService(emailRepo, &fakeTaskRepo{}, &fakeEventRepo{}, gw)

	resp, err := svc.AnalyzeEmails(context.Background(), userID, []int64{3, 1, 2})
	if err != nil {
		t.Fatalf("AnalyzeEmails: %v", err)
	}
	want := []int64{3, 1, 2}
	for i, a := range resp.Analyses {
		if a.EmailID != want[i] {
			t.Errorf("analyses[%d].EmailID = %d, want %d", i, a.EmailID, want[i])
		}
	}
}

func TestAnalyzeEmailsSkipsForeignEmails(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	emailRepo := newFakeEmailRepo(
		testEmail(1, owner, "mine"),
		testEmail(2, other, "not mine"),
	)
	gw := &fakeGateway{respond: func(string) (string, error) {
		return okResponse("work"), nil
	}}
	svc := newTestService(emailRepo, &fakeTaskRepo{}, &fakeEventRepo{}, gw)

	resp, err := svc.AnalyzeEmails(context.Background(), owner, []int64{1, 2})
	if err != nil {
		t.Fatalf("AnalyzeEmails: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("total = %d, want 1", resp.Total)
	}
	if resp.Analyses[0].EmailID != 1 {
		t.Errorf("analyzed email = %d, want 1", resp.Analyses[0].EmailID)
	}
}

func TestAnalyzeEmailsEmptyRequest(t *testing.T) {
	gw := &fakeGateway{respond: func(string) (string, error) {
		return okResponse("work"), nil
	}}
	svc := newTestService(newFakeEmailRepo(), &fakeTaskRepo{}, &fakeEventRepo{}, gw)

	if _, err := svc.AnalyzeEmails(context.Background(), uuid.New(), nil); err == nil {
		t.Fatal("expected error for empty email_ids")
	}
}

func TestAnalyzeEmailsNoGateway(t *testing.T) {
	svc := NewService(newFakeEmailRepo(), &fakeTaskRepo{}, &fakeEventRepo{}, nil, nil)
	if _, err := svc.AnalyzeEmails(context.Background(), uuid.New(), []int64{1}); err == nil {
		t.Fatal("expected configuration error without a gateway")
	}
}

func TestAnalyzeEmailChunkDelayBetweenChunks(t *testing.T) {
	userID := uuid.New()
	var all []*domain.Email
	var ids []int64
	for i := int64(1); i <= 6; i++ {
		all = append(all, testEmail(i, userID, fmt.Sprintf("email %d", i)))
		ids = append(ids, i)
	}
	emailRepo := newFakeEmailRepo(all...)
	gw := &fakeGateway{respond: func(string) (string, error) {
		return okResponse("work"), nil
	}}

	svc := NewService(emailRepo, &fakeTaskRepo{}, &fakeEventRepo{}, gw, &Config{
		BatchSize:  5,
		ChunkDelay: 50 * time.Millisecond,
	})

	start := time.Now()
	if _, err := svc.AnalyzeEmails(context.Background(), userID, ids); err != nil {
		t.Fatalf("AnalyzeEmails: %v", err)
	}
	// 6 emails at batch size 5 means exactly one inter-chunk pause.
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 50ms chunk delay", elapsed)
	}
}

func TestAnalyzeEmailSingle(t *testing.T) {
	userID := uuid.New()
	emailRepo := newFakeEmailRepo(testEmail(7, userID, "status update"))
	gw := &fakeGateway{respond: func(string) (string, error) {
		return okResponse("work"), nil
	}}
	svc := newTestService(emailRepo, &fakeTaskRepo{}, &fakeEventRepo{}, gw)

	analysis, err := svc.AnalyzeEmail(context.Background(), userID, 7)
	if err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}
	if analysis.Failed {
		t.Error("analysis flagged failed")
	}
	if emailRepo.analyses[7] == nil {
		t.Error("analysis not persisted")
	}
}

func TestAnalyzeEmailNotOwned(t *testing.T) {
	emailRepo := newFakeEmailRepo(testEmail(7, uuid.New(), "someone else's"))
	gw := &fakeGateway{respond: func(string) (string, error) {
		return okResponse("work"), nil
	}}
	svc := newTestService(emailRepo, &fakeTaskRepo{}, &fakeEventRepo{}, gw)

	if _, err := svc.AnalyzeEmail(context.Background(), uuid.New(), 7); err == nil {
		t.Fatal("expected not found for foreign email")
	}
}

// fakeCache is an in-memory AnalysisCache.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*domain.AnalysisResult
	hits    int
	lastTTL time.Duration
}

func (c *fakeCache) Get(_ context.Context, key string) (*domain.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return res, ok
}

func (c *fakeCache) Set(_ context.Context, key string, res *domain.AnalysisResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]*domain.AnalysisResult)
	}
	c.entries[key] = res
	c.lastTTL = ttl
}

func TestAnalyzeEmailUsesCacheOnRepeat(t *testing.T) {
	userID := uuid.New()
	emailRepo := newFakeEmailRepo(testEmail(3, userID, "same email"))
	gw := &fakeGateway{respond: func(string) (string, error) {
		return okResponse("finance"), nil
	}}
	cache := &fakeCache{}

	svc := NewService(emailRepo, &fakeTaskRepo{}, &fakeEventRepo{}, gw, &Config{
		BatchSize:  5,
		ChunkDelay: -1,
		Cache:      cache,
	})

	ctx := context.Background()
	if _, err := svc.AnalyzeEmail(ctx, userID, 3); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	if _, err := svc.AnalyzeEmail(ctx, userID, 3); err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	if gw.totalCalls.Load() != 1 {
		t.Errorf("gateway calls = %d, want 1 (second run should hit cache)", gw.totalCalls.Load())
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
	if cache.lastTTL != DefaultCacheTTL {
		t.Errorf("cache ttl = %v, want default %v", cache.lastTTL, DefaultCacheTTL)
	}
}

func TestAnalyzeEmailUsesConfiguredCacheTTL(t *testing.T) {
	userID := uuid.New()
	emailRepo := newFakeEmailRepo(testEmail(4, userID, "ttl check"))
	gw := &fakeGateway{respond: func(string) (string, error) {
		return okResponse("work"), nil
	}}
	cache := &fakeCache{}
	nop := zerolog.Nop()

	svc := NewService(emailRepo, &fakeTaskRepo{}, &fakeEventRepo{}, gw, &Config{
		BatchSize:  5,
		ChunkDelay: -1,
		Cache:      cache,
		CacheTTL:   15 * time.Minute,
		Logger:     &nop,
	})

	if _, err := svc.AnalyzeEmail(context.Background(), userID, 4); err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}
	if cache.lastTTL != 15*time.Minute {
		t.Errorf("cache ttl = %v, want 15m", cache.lastTTL)
	}
}
