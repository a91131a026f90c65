package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"mailmaestro/core/domain"
	in "mailmaestro/core/port/in"
	"mailmaestro/pkg/response"
)

// EmailHandler handles HTTP requests for email operations
type EmailHandler struct {
	service in.MailService
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(service in.MailService) *EmailHandler {
	return &EmailHandler{service: service}
}

// Register registers email routes
func (h *EmailHandler) Register(router fiber.Router) {
	emails := router.Group("/emails")

	emails.Get("/", h.List)
	emails.Post("/", h.Compose)
	emails.Post("/ingest", h.Ingest)
	emails.Get("/:id", h.Get)
	emails.Delete("/:id", h.Delete)

	emails.Put("/:id/read", h.MarkRead)
	emails.Put("/:id/star", h.MarkStarred)
}

// List lists emails with filters
func (h *EmailHandler) List(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	filter := &domain.EmailFilter{
		UserID: userID,
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	if t := c.Query("type"); t != "" {
		emailType := domain.EmailType(t)
		filter.Type = &emailType
	}
	if category := c.Query("category"); category != "" {
		cat := domain.EmailCategory(category)
		if !cat.IsValid() {
			return response.BadRequest(c, "invalid category: "+category)
		}
		filter.Category = &cat
	}
	if priority := c.Query("priority"); priority != "" {
		p := domain.EmailPriority(priority)
		if !p.IsValid() {
			return response.BadRequest(c, "invalid priority: "+priority)
		}
		filter.Priority = &p
	}
	filter.IsRead = QueryBool(c, "is_read")
	filter.IsStarred = QueryBool(c, "is_starred")
	filter.Search = QueryString(c, "search")

	resp, err := h.service.ListEmails(c.Context(), filter)
	if err != nil {
		return handleError(c, err)
	}
	return response.OKWithMeta(c, resp.Emails, &response.Meta{
		Total:  resp.Total,
		Limit:  resp.Limit,
		Offset: resp.Offset,
	})
}

// Compose stores an outgoing email and analyzes it synchronously
func (h *EmailHandler) Compose(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	var req in.ComposeEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	req.FromEmail = GetUserEmail(c)

	email, err := h.service.ComposeEmail(c.Context(), userID, &req)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, email)
}

// Ingest stores an inbound email without analyzing it
func (h *EmailHandler) Ingest(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	var req in.IngestEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	email, err := h.service.IngestEmail(c.Context(), userID, &req)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, email)
}

// Get retrieves an email by ID
func (h *EmailHandler) Get(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid email ID")
	}

	email, err := h.service.GetEmail(c.Context(), userID, id)
	if err != nil {
		return handleError(c, err)
	}
	return response.OK(c, email)
}

// Delete removes an email; linked tasks are unlinked and events removed
func (h *EmailHandler) Delete(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid email ID")
	}

	if err := h.service.DeleteEmail(c.Context(), userID, id); err != nil {
		return handleError(c, err)
	}
	return response.NoContent(c)
}

type readRequest struct {
	IsRead bool `json:"is_read"`
}

// MarkRead sets the read flag
func (h *EmailHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid email ID")
	}

	req := readRequest{IsRead: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	}

	if err := h.service.MarkRead(c.Context(), userID, id, req.IsRead); err != nil {
		return handleError(c, err)
	}
	return response.OK(c, fiber.Map{"id": id, "is_read": req.IsRead})
}

type starRequest struct {
	IsStarred bool `json:"is_starred"`
}

// MarkStarred sets the starred flag
func (h *EmailHandler) MarkStarred(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid email ID")
	}

	req := starRequest{IsStarred: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	}

	if err := h.service.MarkStarred(c.Context(), userID, id, req.IsStarred); err != nil {
		return handleError(c, err)
	}
	return response.OK(c, fiber.Map{"id": id, "is_starred": req.IsStarred})
}
