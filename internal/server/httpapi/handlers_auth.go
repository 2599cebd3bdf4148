package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/linkt-app/linkt/internal/server/models"
)

type registerReq struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required"`
	FirstName        string `json:"firstName" validate:"required"`
	LastName         string `json:"lastName" validate:"required"`
	Phone            string `json:"phone"`
	Role             string `json:"role" validate:"required"`
	OrganizationName string `json:"organizationName"`
}

type verifyReq struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := s.auth.Register(c.Context(), models.RegisterParams{
		Email:            normalizeEmail(req.Email),
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		Role:             models.Role(req.Role),
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (s *Server) handleVerifyEmail(c *fiber.Ctx) error {
	var req verifyReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := s.auth.VerifyEmail(c.Context(), normalizeEmail(req.Email), req.Code)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(res)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := s.auth.Login(c.Context(), normalizeEmail(req.Email), req.Password)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(res)
}

func (s *Server) handleVerify2FA(c *fiber.Ctx) error {
	var req verifyReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := s.auth.Verify2FA(c.Context(), normalizeEmail(req.Email), req.Code)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(res)
}
