package middleware

import (
	"strings"

	"mailmaestro/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims are the JWT claims the API relies on.
type AuthClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token and stores user_id and user_email in
// the request context. Tokens are HS256 signed with the shared secret.
func JWTAuth(secret string) fiber.Handler {
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return unauthorized(c, "missing authorization header")
		}
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return unauthorized(c, "invalid authorization header")
		}

		claims := &AuthClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			logger.WithError(err).Debug("token validation failed")
			return unauthorized(c, "invalid or expired token")
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return unauthorized(c, "invalid token subject")
		}

		c.Locals("user_id", userID)
		if claims.Email != "" {
			c.Locals("user_email", claims.Email)
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
