package httpapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/linkt-app/linkt/internal/common"
)

// actorKey is the fiber.Ctx local under which requireUser stores the
// resolved *models.User.
const actorKey = "actor"

// requireUser verifies the bearer token and resolves the acting user into
// the request locals. It rejects with 401 before any handler runs.
func (s *Server) requireUser(c *fiber.Ctx) error {
	h := c.Get(common.AccessTokenHeaderName)
	if !strings.HasPrefix(h, "Bearer ") {
		return unauthorized(c)
	}

	claims, err := s.claims.ParseClaims(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return unauthorized(c)
	}

	user, err := s.users.GetByEmail(c.Context(), claims.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return unauthorized(c)
		}
		return s.fail(c, err)
	}

	c.Locals(actorKey, user)
	return c.Next()
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(errorBody{
		ErrorCode: "UNAUTHORIZED",
		Message:   "Authorization required",
	})
}
