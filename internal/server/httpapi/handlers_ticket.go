package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

type purchaseReq struct {
	EventID int64 `json:"eventId" validate:"required,gt=0"`
}

// handlePurchase issues a ticket for the acting user.
func (s *Server) handlePurchase(c *fiber.Ctx) error {
	var req purchaseReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ticket, err := s.tickets.Purchase(c.Context(), req.EventID, actor(c).ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}
