package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"mailmaestro/core/domain"
	in "mailmaestro/core/port/in"
	"mailmaestro/pkg/response"
)

// CalendarHandler handles HTTP requests for calendar events
type CalendarHandler struct {
	service in.EventService
}

// NewCalendarHandler creates a new CalendarHandler
func NewCalendarHandler(service in.EventService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// Register registers event routes
func (h *CalendarHandler) Register(router fiber.Router) {
	events := router.Group("/events")

	events.Get("/", h.List)
	events.Get("/:id", h.Get)
	events.Put("/:id/status", h.UpdateStatus)
	events.Delete("/:id", h.Delete)
}

// List lists events with filters
func (h *CalendarHandler) List(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	filter := &domain.EventFilter{
		UserID: userID,
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	if status := c.Query("status"); status != "" {
		s := domain.EventStatus(status)
		if !s.IsValid() {
			return response.BadRequest(c, "invalid status: "+status)
		}
		filter.Status = &s
	}
	if from := c.Query("start_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return response.BadRequest(c, "invalid start_from, want RFC3339")
		}
		filter.StartFrom = &t
	}
	if to := c.Query("start_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return response.BadRequest(c, "invalid start_to, want RFC3339")
		}
		filter.StartTo = &t
	}
	if emailID := c.Query("email_id"); emailID != "" {
		id, err := strconv.ParseInt(emailID, 10, 64)
		if err != nil {
			return response.BadRequest(c, "invalid email_id")
		}
		filter.EmailID = &id
	}

	resp, err := h.service.ListEvents(c.Context(), filter)
	if err != nil {
		return handleError(c, err)
	}
	return response.OKWithMeta(c, resp.Events, &response.Meta{
		Total:  resp.Total,
		Limit:  resp.Limit,
		Offset: resp.Offset,
	})
}

// Get retrieves an event by ID
func (h *CalendarHandler) Get(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid event ID")
	}

	event, err := h.service.GetEvent(c.Context(), userID, id)
	if err != nil {
		return handleError(c, err)
	}
	return response.OK(c, event)
}

// UpdateStatus confirms or cancels an event
func (h *CalendarHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid event ID")
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.service.UpdateStatus(c.Context(), userID, id, domain.EventStatus(req.Status)); err != nil {
		return handleError(c, err)
	}
	return response.OK(c, fiber.Map{"id": id, "status": req.Status})
}

// Delete removes an event
func (h *CalendarHandler) Delete(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid event ID")
	}

	if err := h.service.DeleteEvent(c.Context(), userID, id); err != nil {
		return handleError(c, err)
	}
	return response.NoContent(c)
}
