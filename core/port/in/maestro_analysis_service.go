package in

import (
	"context"

	"mailmaestro/core/domain"

	"github.com/google/uuid"
)

// AnalysisService defines the interface for the email analysis pipeline.
type AnalysisService interface {
	// AnalyzeEmails runs the batch pipeline over the given email ids and
	// persists every result, including failure defaults. Results follow
	// request order; ids not owned by the user are skipped.
	AnalyzeEmails(ctx context.Context, userID uuid.UUID, emailIDs []int64) (*AnalyzeBatchResponse, error)

	// AnalyzeEmail runs a single email through the pipeline synchronously.
	AnalyzeEmail(ctx context.Context, userID uuid.UUID, emailID int64) (*domain.EmailAnalysis, error)
}

// AnalyzeBatchRequest is the body of POST /api/ai/analyze.
type AnalyzeBatchRequest struct {
	EmailIDs []int64 `json:"email_ids"`
}

// AnalyzeBatchResponse summarizes one batch pipeline run.
type AnalyzeBatchResponse struct {
	Analyses  []*domain.EmailAnalysis `json:"analyses"`
	Total     int                     `json:"total"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
}
