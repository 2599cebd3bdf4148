package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linkt-app/linkt/internal/common"
	"github.com/linkt-app/linkt/internal/dbx"
	"github.com/linkt-app/linkt/internal/logging"
	"github.com/linkt-app/linkt/internal/server/models"
	"github.com/linkt-app/linkt/internal/server/repositories/repomanager"
)

// TicketService issues tickets against an event's capacity.
type TicketService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

// NewTicketService constructs a TicketService.
func NewTicketService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TicketService {
	return &TicketService{db: db, repomanager: m, logger: logger, now: time.Now}
}

// Purchase issues one ticket for a student. The capacity check, the insert
// and the QR code assignment run in a single transaction so the sold ticket
// count can never exceed capacity. The QR code embeds the database id and
// is therefore written in a second step after the insert.
func (s *TicketService) Purchase(ctx context.Context, eventID, studentID int64) (*models.Ticket, error) {
	var ticket *models.Ticket

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		eventRepo := s.repomanager.Events(tx)
		userRepo := s.repomanager.Users(tx)
		ticketRepo := s.repomanager.Tickets(tx)

		event, err := eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrEventNotFound
			}
			return fmt.Errorf("error loading event: %w", err)
		}

		student, err := userRepo.GetByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error loading student: %w", err)
		}
		if student.Role != models.RoleStudent {
			return common.ErrInvalidRole
		}

		sold, err := ticketRepo.CountByEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("error counting tickets: %w", err)
		}
		if sold >= event.Capacity {
			return common.ErrEventSoldOut
		}

		t, err := ticketRepo.Create(ctx, &models.Ticket{
			StudentID: studentID,
			EventID:   eventID,
			CreatedAt: s.now(),
		})
		if err != nil {
			return fmt.Errorf("error creating ticket: %w", err)
		}

		qr := models.FormatQRCode(eventID, t.ID)
		if err := ticketRepo.SetQRCode(ctx, t.ID, qr); err != nil {
			return fmt.Errorf("error assigning qr code: %w", err)
		}
		t.QRCode = qr

		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "ticket purchased", "event_id", eventID, "student_id", studentID, "ticket_id", ticket.ID)
	return ticket, nil
}
