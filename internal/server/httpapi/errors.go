package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/linkt-app/linkt/internal/common"
)

// errorBody is the uniform error envelope returned by every endpoint.
type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// statusAndCode maps a sentinel error to an HTTP status and a stable
// machine-readable code. Unknown errors are treated as internal.
func statusAndCode(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return fiber.StatusConflict, "DUPLICATE_EMAIL"
	case errors.Is(err, common.ErrEventSoldOut):
		return fiber.StatusConflict, "EVENT_SOLD_OUT"
	case errors.Is(err, common.ErrWeakPassword):
		return fiber.StatusBadRequest, "WEAK_PASSWORD"
	case errors.Is(err, common.ErrInvalidRole):
		return fiber.StatusBadRequest, "INVALID_ROLE"
	case errors.Is(err, common.ErrMissingOrganizationName):
		return fiber.StatusBadRequest, "MISSING_ORGANIZATION_NAME"
	case errors.Is(err, common.ErrAlreadyVerified):
		return fiber.StatusBadRequest, "ALREADY_VERIFIED"
	case errors.Is(err, common.ErrInvalidOrExpiredCode):
		return fiber.StatusBadRequest, "INVALID_OR_EXPIRED_CODE"
	case errors.Is(err, common.ErrEmailNotVerified):
		return fiber.StatusBadRequest, "EMAIL_NOT_VERIFIED"
	case errors.Is(err, common.ErrBadCredentials):
		return fiber.StatusUnauthorized, "BAD_CREDENTIALS"
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, common.ErrUserNotFound):
		return fiber.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, common.ErrEventNotFound):
		return fiber.StatusNotFound, "EVENT_NOT_FOUND"
	case errors.Is(err, common.ErrActorNotFound):
		return fiber.StatusNotFound, "ACTOR_NOT_FOUND"
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	default:
		return fiber.StatusInternalServerError, "SERVER_ERROR"
	}
}

// fail writes the error envelope for err. Internal errors are logged with
// their cause; the response body stays generic.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status, code := statusAndCode(err)

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		s.logger.Error(c.Context(), "request failed", "path", c.Path(), "error", err.Error())
		msg = "internal server error"
	}

	return c.Status(status).JSON(errorBody{ErrorCode: code, Message: msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody{
		ErrorCode: "INVALID_FIELDS",
		Message:   msg,
	})
}
