package httpapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/linkt-app/linkt/internal/server/models"
)

type scanReq struct {
	QRCode  string `json:"qrCode" validate:"required"`
	EventID int64  `json:"eventId" validate:"required,gt=0"`
}

// actor returns the user resolved by requireUser.
func actor(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(actorKey).(*models.User)
	return u
}

func eventIDParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("eventId"), 10, 64)
}

// handleScan always answers 200 for the four ticket-state outcomes; only
// caller problems (unknown event, foreign event, unknown actor) produce
// error statuses.
func (s *Server) handleScan(c *fiber.Ctx) error {
	var req scanReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := s.scans.ValidateTicket(c.Context(), req.QRCode, req.EventID, actor(c).ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(res)
}

func (s *Server) handleScanStats(c *fiber.Ctx) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return badRequest(c, "invalid event id")
	}

	stats, err := s.scans.GetScanStats(c.Context(), eventID, actor(c).ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(stats)
}
