package tickets

import (
	"context"
	"time"

	"github.com/linkt-app/linkt/internal/server/models"
)

// Repository is the ticket store. MarkScanned is the only write on the scan
// path and must be an atomic compare-and-set on is_scanned: under N
// concurrent presentations of the same code, exactly one caller wins.
type Repository interface {
	Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)

	// SetQRCode assigns the immutable QR payload after the ticket id is
	// known. It refuses to overwrite an existing code.
	SetQRCode(ctx context.Context, ticketID int64, qrCode string) error

	GetByQRCode(ctx context.Context, qrCode string) (*models.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*models.Ticket, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)
	CountByEventScanned(ctx context.Context, eventID int64, scanned bool) (int, error)

	// MarkScanned sets is_scanned/scanned_at/scanned_by, but only if the
	// ticket is not yet scanned. It reports whether this caller performed
	// the transition.
	MarkScanned(ctx context.Context, ticketID, actorID int64, at time.Time) (bool, error)
}
