// Package http contains the fiber handlers for the REST API.
package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mailmaestro/pkg/apperr"
	"mailmaestro/pkg/response"
)

var ErrUnauthorized = errors.New("unauthorized")

// GetUserID safely extracts user_id from fiber context.
// Returns error if not authenticated.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDVal := c.Locals("user_id")
	if userIDVal == nil {
		return uuid.Nil, ErrUnauthorized
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

// GetUserEmail extracts the authenticated user's email claim, if present.
func GetUserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("user_email").(string)
	return email
}

// handleError maps any service error onto the standard error envelope.
func handleError(c *fiber.Ctx, err error) error {
	appErr := apperr.FromError(err)
	return response.Error(c, appErr.HTTPStatus(), appErr.Code, appErr.Message)
}

// QueryBool parses a boolean query parameter (nil if not present).
func QueryBool(c *fiber.Ctx, key string) *bool {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	b := val == "true" || val == "1"
	return &b
}

// QueryString returns a pointer to a string query param (nil if empty).
func QueryString(c *fiber.Ctx, key string) *string {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	return &val
}
