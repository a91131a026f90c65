package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"mailmaestro/core/domain"
	in "mailmaestro/core/port/in"
	"mailmaestro/pkg/response"
)

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	service in.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(service in.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Register registers task routes
func (h *TaskHandler) Register(router fiber.Router) {
	tasks := router.Group("/tasks")

	tasks.Get("/", h.List)
	tasks.Post("/", h.Create)
	tasks.Get("/:id", h.Get)
	tasks.Put("/:id", h.Update)
	tasks.Delete("/:id", h.Delete)

	tasks.Put("/:id/status", h.UpdateStatus)
	tasks.Post("/:id/snooze", h.Snooze)

	tasks.Post("/:id/correct", h.Correct)
	tasks.Get("/:id/corrections", h.ListCorrections)
}

// List lists tasks with filters
func (h *TaskHandler) List(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	filter := &domain.TaskFilter{
		UserID: userID,
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	if status := c.Query("status"); status != "" {
		s := domain.TaskStatus(status)
		if !s.IsValid() {
			return response.BadRequest(c, "invalid status: "+status)
		}
		filter.Status = &s
	}
	if urgency := c.Query("urgency"); urgency != "" {
		u := domain.TaskUrgency(urgency)
		if !u.IsValid() {
			return response.BadRequest(c, "invalid urgency: "+urgency)
		}
		filter.Urgency = &u
	}
	if emailID := c.Query("email_id"); emailID != "" {
		id, err := strconv.ParseInt(emailID, 10, 64)
		if err != nil {
			return response.BadRequest(c, "invalid email_id")
		}
		filter.EmailID = &id
	}

	resp, err := h.service.ListTasks(c.Context(), filter)
	if err != nil {
		return handleError(c, err)
	}
	return response.OKWithMeta(c, resp.Tasks, &response.Meta{
		Total:  resp.Total,
		Limit:  resp.Limit,
		Offset: resp.Offset,
	})
}

// Create creates a manual task
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	var req in.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	task, err := h.service.CreateTask(c.Context(), userID, &req)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, task)
}

// Get retrieves a task by ID
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid task ID")
	}

	task, err := h.service.GetTask(c.Context(), userID, id)
	if err != nil {
		return handleError(c, err)
	}
	return response.OK(c, task)
}

// Update updates task fields
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid task ID")
	}

	var req in.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	task, err := h.service.UpdateTask(c.Context(), userID, id, &req)
	if err != nil {
		return handleError(c, err)
	}
	return response.OK(c, task)
}

// Delete removes a task
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid task ID")
	}

	if err := h.service.DeleteTask(c.Context(), userID, id); err != nil {
		return handleError(c, err)
	}
	return response.NoContent(c)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus changes a task's status
func (h *TaskHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid task ID")
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.service.UpdateStatus(c.Context(), userID, id, domain.TaskStatus(req.Status)); err != nil {
		return handleError(c, err)
	}
	return response.OK(c, fiber.Map{"id": id, "status": req.Status})
}

type snoozeRequest struct {
	Until time.Time `json:"until"`
}

// Snooze snoozes a task until a future time
func (h *TaskHandler) Snooze(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid task ID")
	}

	var req snoozeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Until.IsZero() {
		return response.BadRequest(c, "until is required")
	}

	if err := h.service.SnoozeTask(c.Context(), userID, id, req.Until); err != nil {
		return handleError(c, err)
	}
	return response.OK(c, fiber.Map{"id": id, "snoozed_until": req.Until})
}

// Correct applies a user correction to an AI-extracted field
func (h *TaskHandler) Correct(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid task ID")
	}

	var req in.CorrectTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Field == "" {
		return response.BadRequest(c, "field is required")
	}

	task, err := h.service.CorrectTask(c.Context(), userID, id, &req)
	if err != nil {
		return handleError(c, err)
	}
	return response.OK(c, task)
}

// ListCorrections returns the correction trail for a task
func (h *TaskHandler) ListCorrections(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return response.Unauthorized(c, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid task ID")
	}

	corrections, err := h.service.ListCorrections(c.Context(), userID, id)
	if err != nil {
		return handleError(c, err)
	}
	return response.OK(c, corrections)
}
