package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linkt-app/linkt/internal/common"
	"github.com/linkt-app/linkt/internal/logging"
	"github.com/linkt-app/linkt/internal/server/models"
	"github.com/linkt-app/linkt/internal/server/monitoring"
	"github.com/linkt-app/linkt/internal/server/repositories/repomanager"
)

// generalAdmission is the fixed ticket-type label returned in scan snapshots.
const generalAdmission = "General Admission"

// scannedAtLayout formats the original scan time in ALREADY_SCANNED messages.
const scannedAtLayout = "Jan 02, 2006 15:04"

// ScanService decides whether a presented ticket code admits entry.
//
// The four ticket-state outcomes (INVALID, WRONG_EVENT, ALREADY_SCANNED,
// SUCCESS) are returned as data. Caller problems (unknown event, unknown
// actor, an actor who does not own the event) propagate as errors instead.
type ScanService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

// NewScanService constructs a ScanService.
func NewScanService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ScanService {
	return &ScanService{db: db, repomanager: m, logger: logger, now: time.Now}
}

// ValidateTicket runs the admission state machine for one presented code.
//
// Checks run in a fixed order: code validity and event match come before
// the ownership check, so a mis-scoped attempt gets a useful message
// without leaking authorization details. Only SUCCESS mutates the ticket,
// via an atomic compare-and-set on is_scanned; the losing side of a
// concurrent double scan comes back as ALREADY_SCANNED.
func (s *ScanService) ValidateTicket(ctx context.Context, qrCode string, eventID, actorID int64) (*models.ScanResult, error) {
	started := s.now()
	result, err := s.validate(ctx, qrCode, eventID, actorID)
	if err == nil {
		monitoring.TrackScan(string(result.Status), s.now().Sub(started))
		s.logger.Info(ctx, "ticket scan", "event_id", eventID, "status", result.Status)
	}
	return result, err
}

func (s *ScanService) validate(ctx context.Context, qrCode string, eventID, actorID int64) (*models.ScanResult, error) {
	ticketRepo := s.repomanager.Tickets(s.db)
	eventRepo := s.repomanager.Events(s.db)
	userRepo := s.repomanager.Users(s.db)

	// 1. Look up the ticket by presented code.
	ticket, err := ticketRepo.GetByQRCode(ctx, qrCode)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.ScanResult{
				Success: false,
				Message: "Invalid ticket code",
				Status:  models.ScanInvalid,
			}, nil
		}
		return nil, fmt.Errorf("error loading ticket: %w", err)
	}

	// 2. The ticket must belong to the requested event. The message names
	// the ticket's actual event, read through the ticket's own reference.
	if ticket.EventID != eventID {
		actual, err := eventRepo.GetByID(ctx, ticket.EventID)
		if err != nil {
			return nil, fmt.Errorf("error loading ticket event: %w", err)
		}
		return &models.ScanResult{
			Success: false,
			Message: "Ticket is for a different event: " + actual.Title,
			Status:  models.ScanWrongEvent,
		}, nil
	}

	// 3. Reject an already-redeemed ticket with the original scan details.
	if ticket.IsScanned {
		return s.alreadyScanned(ctx, ticket)
	}

	// 4. Resolve the requested event.
	event, err := eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrEventNotFound
		}
		return nil, fmt.Errorf("error loading event: %w", err)
	}

	// 5. Only the owning organizer may scan.
	if event.OrganizerID != actorID {
		return nil, common.ErrorUnauthorized
	}

	// 6. Resolve the scanning actor.
	actor, err := userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrActorNotFound
		}
		return nil, fmt.Errorf("error loading actor: %w", err)
	}

	student, err := userRepo.GetByID(ctx, ticket.StudentID)
	if err != nil {
		return nil, fmt.Errorf("error loading ticket holder: %w", err)
	}

	// 7. One-way transition. The conditional update re-validates
	// is_scanned atomically; losing the race degrades to ALREADY_SCANNED.
	now := s.now()
	won, err := ticketRepo.MarkScanned(ctx, ticket.ID, actorID, now)
	if err != nil {
		return nil, fmt.Errorf("error marking ticket scanned: %w", err)
	}
	if !won {
		fresh, err := ticketRepo.GetByQRCode(ctx, qrCode)
		if err != nil {
			return nil, fmt.Errorf("error reloading ticket: %w", err)
		}
		return s.alreadyScanned(ctx, fresh)
	}

	data := &models.TicketData{
		TicketID:     ticket.ID,
		StudentName:  student.DisplayName(),
		StudentEmail: student.Email,
		EventTitle:   event.Title,
		EventStart:   event.StartAt,
		TicketType:   generalAdmission,
	}

	return &models.ScanResult{
		Success:   true,
		Message:   "Ticket successfully scanned for " + data.StudentName,
		Status:    models.ScanSuccess,
		Ticket:    data,
		ScannedAt: &now,
		ScannedBy: actor.DisplayName(),
	}, nil
}

func (s *ScanService) alreadyScanned(ctx context.Context, ticket *models.Ticket) (*models.ScanResult, error) {
	scannedBy := "Unknown"
	if ticket.ScannedByID != nil {
		scanner, err := s.repomanager.Users(s.db).GetByID(ctx, *ticket.ScannedByID)
		if err == nil {
			scannedBy = scanner.DisplayName()
		}
	}

	scannedAt := "unknown time"
	if ticket.ScannedAt != nil {
		scannedAt = ticket.ScannedAt.Format(scannedAtLayout)
	}

	return &models.ScanResult{
		Success:   false,
		Message:   fmt.Sprintf("Ticket already scanned at %s by %s", scannedAt, scannedBy),
		Status:    models.ScanAlreadyScanned,
		ScannedAt: ticket.ScannedAt,
		ScannedBy: scannedBy,
	}, nil
}

// GetScanStats returns admission progress for one event. Authorization is
// identical to ValidateTicket: only the owning organizer may query. Counts
// are computed from the ticket set at query time.
func (s *ScanService) GetScanStats(ctx context.Context, eventID, actorID int64) (*models.ScanStats, error) {
	eventRepo := s.repomanager.Events(s.db)
	ticketRepo := s.repomanager.Tickets(s.db)

	event, err := eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrEventNotFound
		}
		return nil, fmt.Errorf("error loading event: %w", err)
	}

	if event.OrganizerID != actorID {
		return nil, common.ErrorUnauthorized
	}

	total, err := ticketRepo.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error counting tickets: %w", err)
	}
	scanned, err := ticketRepo.CountByEventScanned(ctx, eventID, true)
	if err != nil {
		return nil, fmt.Errorf("error counting scanned tickets: %w", err)
	}

	return &models.ScanStats{
		EventID:        event.ID,
		EventName:      event.Title,
		TotalTickets:   total,
		ScannedCount:   scanned,
		RemainingCount: total - scanned,
	}, nil
}
