package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mailmaestro/core/agent/llm"
	"mailmaestro/core/domain"
	"mailmaestro/core/port/in"
	"mailmaestro/pkg/apperr"
)

// AnalyzeEmails runs the batch pipeline. Emails are processed in chunks of
// the configured batch size; within a chunk every email is analyzed
// concurrently, and a fixed delay separates chunks. A per-email failure
// never aborts the run: the email gets the failure-default record and the
// rest of the batch proceeds.
func (s *Service) AnalyzeEmails(ctx context.Context, userID uuid.UUID, emailIDs []int64) (*in.AnalyzeBatchResponse, error) {
	if s.gateway == nil {
		return nil, apperr.Config("AI provider is not configured")
	}
	if len(emailIDs) == 0 {
		return nil, apperr.BadRequest("email_ids must not be empty")
	}

	emails, err := s.emails.GetByIDs(ctx, userID, emailIDs)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if len(emails) == 0 {
		return nil, apperr.NotFound("emails")
	}
	if len(emails) < len(emailIDs) {
		s.log.Warn().
			Int("requested", len(emailIDs)).
			Int("found", len(emails)).
			Msg("some requested emails were not found and are skipped")
	}

	start := time.Now()
	analyses := make([]*domain.EmailAnalysis, len(emails))

	for lo := 0; lo < len(emails); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(emails))
		chunk := emails[lo:hi]

		var wg sync.WaitGroup
		for i, email := range chunk {
			wg.Add(1)
			go func(idx int, em *domain.Email) {
				defer wg.Done()
				analyses[idx] = s.analyzeOne(ctx, em)
			}(lo+i, email)
		}
		wg.Wait()

		for i, email := range chunk {
			s.persistAnalysis(ctx, email, analyses[lo+i])
		}

		if hi < len(emails) && s.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.chunkDelay):
			}
		}
	}

	resp := &in.AnalyzeBatchResponse{
		Analyses: analyses,
		Total:    len(analyses),
	}
	for _, a := range analyses {
		if a.Failed {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	s.log.Info().
		Int("total", resp.Total).
		Int("succeeded", resp.Succeeded).
		Int("failed", resp.Failed).
		Int64("took_ms", time.Since(start).Milliseconds()).
		Msg("batch analysis completed")

	return resp, nil
}

// AnalyzeEmail runs one email through the pipeline synchronously.
func (s *Service) AnalyzeEmail(ctx context.Context, userID uuid.UUID, emailID int64) (*domain.EmailAnalysis, error) {
	if s.gateway == nil {
		return nil, apperr.Config("AI provider is not configured")
	}

	email, err := s.emails.GetByID(ctx, emailID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if email == nil || email.UserID != userID {
		return nil, apperr.NotFound("email")
	}

	analysis := s.analyzeOne(ctx, email)
	s.persistAnalysis(ctx, email, analysis)
	return analysis, nil
}

// analyzeOne produces a complete analysis for one email. It never returns an
// error: gateway or parse failures yield the failure-default record flagged
// as failed.
func (s *Service) analyzeOne(ctx context.Context, email *domain.Email) *domain.EmailAnalysis {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, cacheKey(email)); ok {
			s.log.Debug().Int64("email_id", email.ID).Msg("analysis cache hit")
			return &domain.EmailAnalysis{EmailID: email.ID, Result: cached}
		}
	}

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return s.failure(email, err, "limiter acquire")
	}
	raw, err := s.gateway.Analyze(ctx, llm.BuildAnalysisPrompt(email))
	release()
	if err != nil {
		return s.failure(email, err, "gateway call")
	}

	result, report := llm.Normalize(raw, s.gateway.Structured())
	switch report.Outcome {
	case llm.OutcomeFailed:
		s.log.Warn().Int64("email_id", email.ID).Err(report.ParseErr).
			Msg("model response unparseable, using failure defaults")
		return &domain.EmailAnalysis{EmailID: email.ID, Result: result, Failed: true}
	case llm.OutcomeRepaired:
		s.log.Debug().
			Int64("email_id", email.ID).
			Strs("repaired", report.Repaired).
			Msg("model response repaired")
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey(email), result, s.cacheTTL)
	}
	return &domain.EmailAnalysis{EmailID: email.ID, Result: result}
}

func (s *Service) failure(email *domain.Email, err error, stage string) *domain.EmailAnalysis {
	s.log.Warn().Int64("email_id", email.ID).Str("stage", stage).Err(err).
		Msg("analysis failed, using failure defaults")
	return &domain.EmailAnalysis{
		EmailID: email.ID,
		Result:  domain.FailureAnalysis(),
		Failed:  true,
	}
}
