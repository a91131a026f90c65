package analysis

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"mailmaestro/core/domain"
)

func taskResponse() string {
	return `{
		"summary": "Action items from standup",
		"category": "work",
		"priority": "high",
		"sentiment": "neutral",
		"action_required": true,
		"confidence": 0.85,
		"key_points": ["deploy Friday"],
		"tasks": [
			{"title": "Prepare deploy checklist", "urgency": "high"}
		],
		"meeting": {"title": "Release sync", "start_time": "2026-09-02T14:00:00Z", "location": "Zoom"}
	}`
}

func TestPersistCreatesDerivedRecords(t *testing.T) {
	userID := uuid.New()
	email := testEmail(10, userID, "standup notes")
	emailRepo := newFakeEmailRepo(email)
	taskRepo := &fakeTaskRepo{}
	eventRepo := &fakeEventRepo{}

	gw := &fakeGateway{respond: func(string) (string, error) {
		return taskResponse(), nil
	}}
	svc := newTestService(emailRepo, taskRepo, eventRepo, gw)

	if _, err := svc.AnalyzeEmail(context.Background(), userID, 10); err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}

	if len(taskRepo.created) != 1 {
		t.Fatalf("tasks created = %d, want 1", len(taskRepo.created))
	}
	task := taskRepo.created[0]
	if task.Title != "Prepare deploy checklist" {
		t.Errorf("task title = %q", task.Title)
	}
	if task.Status != domain.TaskStatusPending {
		t.Errorf("task status = %s, want pending", task.Status)
	}
	if task.EmailID == nil || *task.EmailID != 10 {
		t.Errorf("task email id = %v, want 10", task.EmailID)
	}
	if task.Confidence != 0.85 {
		t.Errorf("task confidence = %v, want 0.85", task.Confidence)
	}
	// Missing description falls back to the email body.
	if !strings.Contains(task.Description, "standup notes") {
		t.Errorf("task description = %q, want body prefix", task.Description)
	}

	if len(eventRepo.created) != 1 {
		t.Fatalf("events created = %d, want 1", len(eventRepo.created))
	}
	event := eventRepo.created[0]
	if event.Title != "Release sync" {
		t.Errorf("event title = %q", event.Title)
	}
	if event.Status != domain.EventStatusPending {
		t.Errorf("event status = %s, want pending", event.Status)
	}
	if event.EmailID != 10 {
		t.Errorf("event email id = %d, want 10", event.EmailID)
	}
	if event.Location == nil || *event.Location != "Zoom" {
		t.Errorf("event location = %v, want Zoom", event.Location)
	}
	if event.StartTime == nil || !event.StartTime.Equal(time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("event start = %v", event.StartTime)
	}
}

func TestPersistReanalysisDuplicatesDerivedRecords(t *testing.T) {
	userID := uuid.New()
	email := testEmail(11, userID, "standup notes")
	emailRepo := newFakeEmailRepo(email)
	taskRepo := &fakeTaskRepo{}
	eventRepo := &fakeEventRepo{}

	gw := &fakeGateway{respond: func(string) (string, error) {
		return taskResponse(), nil
	}}
	svc := newTestService(emailRepo, taskRepo, eventRepo, gw)

	ctx := context.Background()
	if _, err := svc.AnalyzeEmail(ctx, userID, 11); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	if _, err := svc.AnalyzeEmail(ctx, userID, 11); err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	// Re-analysis appends; no dedup against existing derived rows.
	if len(taskRepo.created) != 2 {
		t.Errorf("tasks created = %d, want 2 after re-analysis", len(taskRepo.created))
	}
	if len(eventRepo.created) != 2 {
		t.Errorf("events created = %d, want 2 after re-analysis", len(eventRepo.created))
	}
}

func TestPersistWritesAreIndependent(t *testing.T) {
	userID := uuid.New()
	email := testEmail(12, userID, "standup notes")
	emailRepo := newFakeEmailRepo(email)
	emailRepo.failIDs[12] = true
	taskRepo := &fakeTaskRepo{}
	eventRepo := &fakeEventRepo{}

	gw := &fakeGateway{respond: func(string) (string, error) {
		return taskResponse(), nil
	}}
	svc := newTestService(emailRepo, taskRepo, eventRepo, gw)

	if _, err := svc.AnalyzeEmail(context.Background(), userID, 12); err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}

	// The email column update failed, yet derived writes still ran.
	if len(taskRepo.created) != 1 {
		t.Errorf("tasks created = %d, want 1 despite email update failure", len(taskRepo.created))
	}
	if len(eventRepo.created) != 1 {
		t.Errorf("events created = %d, want 1 despite email update failure", len(eventRepo.created))
	}
}

func TestPersistTaskFailureDoesNotBlockEvent(t *testing.T) {
	userID := uuid.New()
	email := testEmail(13, userID, "standup notes")
	emailRepo := newFakeEmailRepo(email)
	taskRepo := &fakeTaskRepo{fail: true}
	eventRepo := &fakeEventRepo{}

	gw := &fakeGateway{respond: func(string) (string, error) {
		return taskResponse(), nil
	}}
	svc := newTestService(emailRepo, taskRepo, eventRepo, gw)

	if _, err := svc.AnalyzeEmail(context.Background(), userID, 13); err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}

	if emailRepo.analyses[13] == nil {
		t.Error("email analysis not persisted")
	}
	if len(eventRepo.created) != 1 {
		t.Errorf("events created = %d, want 1 despite task insert failure", len(eventRepo.created))
	}
}

func TestPersistFailedAnalysisSkipsDerivedRecords(t *testing.T) {
	userID := uuid.New()
	email := testEmail(14, userID, "standup notes")
	emailRepo := newFakeEmailRepo(email)
	taskRepo := &fakeTaskRepo{}
	eventRepo := &fakeEventRepo{}

	gw := &fakeGateway{respond: func(string) (string, error) {
		return "", fmt.Errorf("provider: 503")
	}}
	svc := newTestService(emailRepo, taskRepo, eventRepo, gw)

	analysis, err := svc.AnalyzeEmail(context.Background(), userID, 14)
	if err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}
	if !analysis.Failed {
		t.Fatal("analysis not flagged failed")
	}

	// Failure default reaches the email row but never fabricates tasks.
	if res := emailRepo.analyses[14]; res == nil || res.Confidence != domain.FailureConfidence {
		t.Errorf("persisted analysis = %+v, want failure default", res)
	}
	if len(taskRepo.created) != 0 || len(eventRepo.created) != 0 {
		t.Errorf("derived records created for failed analysis: %d tasks, %d events",
			len(taskRepo.created), len(eventRepo.created))
	}
}
