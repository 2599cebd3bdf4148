package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

type posterUploadResp struct {
	StorageKey string `json:"storageKey"`
	UploadURL  string `json:"uploadUrl"`
}

func (s *Server) handlePosterUploadURL(c *fiber.Ctx) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return badRequest(c, "invalid event id")
	}

	key, url, err := s.posters.GetPosterUploadURL(c.Context(), eventID, actor(c).ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(posterUploadResp{StorageKey: key, UploadURL: url})
}

func (s *Server) handlePosterURL(c *fiber.Ctx) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return badRequest(c, "invalid event id")
	}

	url, err := s.posters.GetPosterURL(c.Context(), eventID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}
