package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linkt-app/linkt/internal/common"
	"github.com/linkt-app/linkt/internal/dbx"
	"github.com/linkt-app/linkt/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const ticketColumns = `id, qr_code, student_id, event_id, is_scanned, scanned_at, scanned_by, created_at`

func (r *PostgresRepository) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	query := `
		INSERT INTO tickets (qr_code, student_id, event_id, is_scanned)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		nullIfEmpty(ticket.QRCode), ticket.StudentID, ticket.EventID).
		Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ticket, nil
}

func (r *PostgresRepository) SetQRCode(ctx context.Context, ticketID int64, qrCode string) error {
	query := `UPDATE tickets SET qr_code = $2 WHERE id = $1 AND qr_code IS NULL`
	res, err := r.db.ExecContext(ctx, query, ticketID, qrCode)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("qr code already assigned for ticket %d", ticketID)
	}
	return nil
}

func (r *PostgresRepository) GetByQRCode(ctx context.Context, qrCode string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE qr_code = $1`
	return scanTicket(r.db.QueryRowContext(ctx, query, qrCode))
}

func (r *PostgresRepository) ListByEvent(ctx context.Context, eventID int64) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Ticket
	for rows.Next() {
		t := &models.Ticket{}
		var qr sql.NullString
		if err := rows.Scan(&t.ID, &qr, &t.StudentID, &t.EventID,
			&t.IsScanned, &t.ScannedAt, &t.ScannedByID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		t.QRCode = qr.String
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByEventScanned(ctx context.Context, eventID int64, scanned bool) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND is_scanned = $2`, eventID, scanned).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// MarkScanned is a conditional UPDATE so the read-decide-write on
// is_scanned is a single atomic statement. A caller that reports false lost
// the race (or the ticket was already redeemed) and should re-read the
// ticket for the original scan details.
func (r *PostgresRepository) MarkScanned(ctx context.Context, ticketID, actorID int64, at time.Time) (bool, error) {
	query := `
		UPDATE tickets
		SET is_scanned = TRUE, scanned_at = $3, scanned_by = $2
		WHERE id = $1 AND NOT is_scanned
	`
	res, err := r.db.ExecContext(ctx, query, ticketID, actorID, at)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func scanTicket(row *sql.Row) (*models.Ticket, error) {
	t := &models.Ticket{}
	var qr sql.NullString
	err := row.Scan(&t.ID, &qr, &t.StudentID, &t.EventID,
		&t.IsScanned, &t.ScannedAt, &t.ScannedByID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	t.QRCode = qr.String
	return t, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
