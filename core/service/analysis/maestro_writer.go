package analysis

import (
	"context"
	"strings"

	"mailmaestro/core/domain"
)

const maxDerivedDescription = 200

// persistAnalysis writes one analysis outcome: the email's AI columns, then
// derived task rows, then a derived event row. The three writes are
// independent, not transactional; a failure in one is logged and the others
// still run. Failure-default analyses update the email only, so a provider
// outage never fabricates tasks or events.
func (s *Service) persistAnalysis(ctx context.Context, email *domain.Email, analysis *domain.EmailAnalysis) {
	res := analysis.Result

	if err := s.emails.UpdateAnalysis(ctx, email.ID, res); err != nil {
		s.log.Error().Int64("email_id", email.ID).Err(err).
			Msg("failed to persist email analysis")
	}

	if analysis.Failed {
		return
	}

	for _, extracted := range res.Tasks {
		task := buildTask(email, res, extracted)
		if err := s.tasks.Create(ctx, task); err != nil {
			s.log.Error().
				Int64("email_id", email.ID).
				Str("title", task.Title).
				Err(err).
				Msg("failed to persist extracted task")
		}
	}

	if res.Meeting != nil {
		event := buildEvent(email, res.Meeting)
		if err := s.events.Create(ctx, event); err != nil {
			s.log.Error().
				Int64("email_id", email.ID).
				Str("title", event.Title).
				Err(err).
				Msg("failed to persist detected meeting")
		}
	}
}

// buildTask maps an extracted task onto a task row. A missing description
// falls back to a prefix of the email body so the task is never blank.
func buildTask(email *domain.Email, res *domain.AnalysisResult, extracted domain.ExtractedTask) *domain.Task {
	description := strings.TrimSpace(extracted.Description)
	if description == "" {
		description = truncate(strings.TrimSpace(email.Body), maxDerivedDescription)
	}

	task := &domain.Task{
		UserID:      email.UserID,
		Title:       extracted.Title,
		Description: description,
		DueDate:     extracted.DueDate,
		Urgency:     extracted.Urgency,
		Status:      domain.TaskStatusPending,
		Confidence:  res.Confidence,
		EmailID:     &email.ID,
	}
	if extracted.Assignee != "" {
		assignee := extracted.Assignee
		task.Assignee = &assignee
	}
	return task
}

func buildEvent(email *domain.Email, meeting *domain.MeetingDetails) *domain.CalendarEvent {
	event := &domain.CalendarEvent{
		UserID:    email.UserID,
		Title:     meeting.Title,
		StartTime: meeting.StartTime,
		EndTime:   meeting.EndTime,
		Status:    domain.EventStatusPending,
		Attendees: meeting.Attendees,
		EmailID:   email.ID,
	}
	if meeting.Location != "" {
		location := meeting.Location
		event.Location = &location
	}
	return event
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
