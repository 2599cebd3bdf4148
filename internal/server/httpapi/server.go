// Package httpapi exposes the service layer over HTTP. It owns request
// decoding, validation, JWT-based actor resolution, and the mapping from
// sentinel errors to status codes; no business rules live here.
package httpapi

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/linkt-app/linkt/internal/logging"
	"github.com/linkt-app/linkt/internal/server/auth"
	"github.com/linkt-app/linkt/internal/server/models"
)

// AuthFlow is the slice of AuthService the API consumes.
type AuthFlow interface {
	Register(ctx context.Context, p models.RegisterParams) (*models.AuthResult, error)
	VerifyEmail(ctx context.Context, email, code string) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Verify2FA(ctx context.Context, email, code string) (*models.AuthResult, error)
}

// ScanValidator is the slice of ScanService the API consumes.
type ScanValidator interface {
	ValidateTicket(ctx context.Context, qrCode string, eventID, actorID int64) (*models.ScanResult, error)
	GetScanStats(ctx context.Context, eventID, actorID int64) (*models.ScanStats, error)
}

// TicketPurchaser is the slice of TicketService the API consumes.
type TicketPurchaser interface {
	Purchase(ctx context.Context, eventID, studentID int64) (*models.Ticket, error)
}

// PosterStore is the slice of PosterService the API consumes.
type PosterStore interface {
	GetPosterUploadURL(ctx context.Context, eventID, actorID int64) (string, string, error)
	GetPosterURL(ctx context.Context, eventID int64) (string, error)
}

// ClaimsParser turns a bearer token back into claims.
type ClaimsParser interface {
	ParseClaims(tokenString string) (*auth.Claims, error)
}

// UserResolver loads the acting user behind a verified token.
type UserResolver interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Server holds the handler dependencies and builds the fiber app.
type Server struct {
	auth    AuthFlow
	scans   ScanValidator
	tickets TicketPurchaser
	posters PosterStore
	claims  ClaimsParser
	users   UserResolver
	logger  logging.Logger

	validate *validator.Validate
}

func NewServer(auth AuthFlow, scans ScanValidator, tickets TicketPurchaser, posters PosterStore,
	claims ClaimsParser, users UserResolver, logger logging.Logger) *Server {
	return &Server{
		auth:     auth,
		scans:    scans,
		tickets:  tickets,
		posters:  posters,
		claims:   claims,
		users:    users,
		logger:   logger,
		validate: validator.New(),
	}
}

// Router builds the fiber application with all routes registered.
func (s *Server) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.handleRegister)
	auth.Post("/verify-email", s.handleVerifyEmail)
	auth.Post("/login", s.handleLogin)
	auth.Post("/verify-2fa", s.handleVerify2FA)

	protected := api.Group("", s.requireUser)
	protected.Post("/tickets/purchase", s.handlePurchase)
	protected.Post("/scan", s.handleScan)
	protected.Get("/events/:eventId/scan-stats", s.handleScanStats)
	protected.Post("/events/:eventId/poster-upload-url", s.handlePosterUploadURL)
	protected.Get("/events/:eventId/poster-url", s.handlePosterURL)

	return app
}
