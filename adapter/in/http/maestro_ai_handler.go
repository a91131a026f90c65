package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	in "mailmaestro/core/port/in"
	"mailmaestro/pkg/response"
)

const maxBatchRequest = 100

// AIHandler handles HTTP requests for email analysis
type AIHandler struct {
	service in.AnalysisService
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(service in.AnalysisService) *AIHandler {
	return &AIHandler{service: service}
}

// Register registers analysis routes
func (h *AIHandler) Register(router fiber.Router) {
	ai := router.Group("/ai")
	ai.Post("/analyze", h.AnalyzeBatch)
	ai.Post("/analyze/:id", h.AnalyzeOne)
}

// AnalyzeBatch analyzes a batch of emails and persists the results
func (h *AIHandler) AnalyzeBatch(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	var req in.AnalyzeBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if len(req.EmailIDs) == 0 {
		return response.BadRequest(c, "email_ids is required")
	}
	if len(req.EmailIDs) > maxBatchRequest {
		return response.BadRequest(c, "too many email_ids, max "+strconv.Itoa(maxBatchRequest))
	}

	resp, err := h.service.AnalyzeEmails(c.Context(), userID, req.EmailIDs)
	if err != nil {
		return handleError(c, err)
	}
	return response.OK(c, resp)
}

// AnalyzeOne analyzes a single email synchronously
func (h *AIHandler) AnalyzeOne(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid email ID")
	}

	analysis, err := h.service.AnalyzeEmail(c.Context(), userID, id)
	if err != nil {
		return handleError(c, err)
	}
	return response.OK(c, analysis)
}
