package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"mailmaestro/core/domain"
	"mailmaestro/core/port/in"
)

// ============================================================
// Fakes
// ============================================================

type fakeEmailRepo struct {
	emails map[int64]*domain.Email
	nextID int64
}

func newFakeEmailRepo() *fakeEmailRepo {
	return &fakeEmailRepo{emails: make(map[int64]*domain.Email), nextID: 1}
}

func (r *fakeEmailRepo) GetByID(_ context.Context, id int64) (*domain.Email, error) {
	email, ok := r.emails[id]
	if !ok {
		return nil, nil
	}
	cp := *email
	return &cp, nil
}

func (r *fakeEmailRepo) GetByIDs(_ context.Context, userID uuid.UUID, ids []int64) ([]*domain.Email, error) {
	var out []*domain.Email
	for _, id := range ids {
		if email, ok := r.emails[id]; ok && email.UserID == userID {
			cp := *email
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeEmailRepo) List(_ context.Context, _ *domain.EmailFilter) ([]*domain.Email, int, error) {
	return nil, 0, nil
}

func (r *fakeEmailRepo) Create(_ context.Context, email *domain.Email) error {
	if email.ID == 0 {
		email.ID = r.nextID
		r.nextID++
	}
	cp := *email
	r.emails[email.ID] = &cp
	return nil
}

func (r *fakeEmailRepo) Update(_ context.Context, email *domain.Email) error {
	cp := *email
	r.emails[email.ID] = &cp
	return nil
}

func (r *fakeEmailRepo) UpdateAnalysis(_ context.Context, id int64, res *domain.AnalysisResult) error {
	if email, ok := r.emails[id]; ok {
		email.ApplyAnalysis(res)
	}
	return nil
}

func (r *fakeEmailRepo) SetRead(_ context.Context, id int64, read bool) error {
	if email, ok := r.emails[id]; ok {
		email.IsRead = read
	}
	return nil
}

func (r *fakeEmailRepo) SetStarred(_ context.Context, id int64, starred bool) error {
	if email, ok := r.emails[id]; ok {
		email.IsStarred = starred
	}
	return nil
}

func (r *fakeEmailRepo) Delete(_ context.Context, id int64) error {
	delete(r.emails, id)
	return nil
}

// fakeAnalyzer counts AnalyzeEmail calls and applies a canned result through
// the repository, mimicking the pipeline's persistence side effect.
type fakeAnalyzer struct {
	repo    *fakeEmailRepo
	calls   int
	lastIDs []int64
	fail    bool
}

func (a *fakeAnalyzer) AnalyzeEmails(_ context.Context, _ uuid.UUID, _ []int64) (*in.AnalyzeBatchResponse, error) {
	return nil, errors.New("not used in these tests")
}

func (a *fakeAnalyzer) AnalyzeEmail(ctx context.Context, _ uuid.UUID, emailID int64) (*domain.EmailAnalysis, error) {
	a.calls++
	a.lastIDs = append(a.lastIDs, emailID)
	if a.fail {
		return nil, errors.New("model unavailable")
	}
	res := domain.DefaultAnalysis()
	res.Summary = "Outgoing status update."
	res.Category = domain.CategoryWork
	a.repo.UpdateAnalysis(ctx, emailID, res)
	return &domain.EmailAnalysis{EmailID: emailID, Result: res}, nil
}

// ============================================================
// Compose
// ============================================================

func TestComposeEmailTriggersSingleAnalysis(t *testing.T) {
	repo := newFakeEmailRepo()
	analyzer := &fakeAnalyzer{repo: repo}
	svc := NewService(repo, analyzer)
	userID := uuid.New()

	email, err := svc.ComposeEmail(context.Background(), userID, &in.ComposeEmailRequest{
		ToEmail:   "team@example.com",
		Subject:   "Weekly status",
		Body:      "Shipping on schedule.",
		FromEmail: "me@example.com",
	})
	if err != nil {
		t.Fatalf("ComposeEmail: %v", err)
	}

	if analyzer.calls != 1 {
		t.Fatalf("analyzer calls = %d, want exactly 1", analyzer.calls)
	}
	if len(analyzer.lastIDs) != 1 || analyzer.lastIDs[0] != email.ID {
		t.Errorf("analyzer saw ids %v, want [%d]", analyzer.lastIDs, email.ID)
	}
	if email.AICategory == nil || *email.AICategory != domain.CategoryWork {
		t.Errorf("composed email should carry analysis category, got %v", email.AICategory)
	}
	if email.Type != domain.EmailTypeSent {
		t.Errorf("type = %q, want %q", email.Type, domain.EmailTypeSent)
	}
}

func TestComposeEmailStoredWhenAnalyzerFails(t *testing.T) {
	repo := newFakeEmailRepo()
	analyzer := &fakeAnalyzer{repo: repo, fail: true}
	svc := NewService(repo, analyzer)
	userID := uuid.New()

	email, err := svc.ComposeEmail(context.Background(), userID, &in.ComposeEmailRequest{
		ToEmail:   "team@example.com",
		Subject:   "Weekly status",
		FromEmail: "me@example.com",
	})
	if err != nil {
		t.Fatalf("ComposeEmail: %v", err)
	}

	if analyzer.calls != 1 {
		t.Fatalf("analyzer calls = %d, want 1", analyzer.calls)
	}
	stored, _ := repo.GetByID(context.Background(), email.ID)
	if stored == nil {
		t.Fatal("email should be stored despite analysis failure")
	}
	if stored.IsAnalyzed() {
		t.Error("email should have no analysis fields after analyzer failure")
	}
}

func TestComposeEmailWithoutAnalyzer(t *testing.T) {
	repo := newFakeEmailRepo()
	svc := NewService(repo, nil)

	email, err := svc.ComposeEmail(context.Background(), uuid.New(), &in.ComposeEmailRequest{
		ToEmail:   "team@example.com",
		Body:      "hello",
		FromEmail: "me@example.com",
	})
	if err != nil {
		t.Fatalf("ComposeEmail: %v", err)
	}
	if email.ID == 0 {
		t.Error("email should be stored with an id")
	}
}

func TestComposeEmailValidation(t *testing.T) {
	svc := NewService(newFakeEmailRepo(), nil)

	if _, err := svc.ComposeEmail(context.Background(), uuid.New(), &in.ComposeEmailRequest{
		Subject: "no recipient",
	}); err == nil {
		t.Error("expected error for missing to_email")
	}
	if _, err := svc.ComposeEmail(context.Background(), uuid.New(), &in.ComposeEmailRequest{
		ToEmail: "team@example.com",
	}); err == nil {
		t.Error("expected error for empty subject and body")
	}
}

// ============================================================
// Ingest
// ============================================================

func TestIngestEmailDoesNotAnalyze(t *testing.T) {
	repo := newFakeEmailRepo()
	analyzer := &fakeAnalyzer{repo: repo}
	svc := NewService(repo, analyzer)

	email, err := svc.IngestEmail(context.Background(), uuid.New(), &in.IngestEmailRequest{
		FromEmail: "sender@example.com",
		ToEmail:   "me@example.com",
		Subject:   "Invoice",
	})
	if err != nil {
		t.Fatalf("IngestEmail: %v", err)
	}

	if analyzer.calls != 0 {
		t.Errorf("analyzer calls = %d, want 0 on ingest", analyzer.calls)
	}
	if email.Type != domain.EmailTypeInbox {
		t.Errorf("type = %q, want %q", email.Type, domain.EmailTypeInbox)
	}
}
