package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		INSERT INTO events (title, description, event_type, start_at, end_at,
			location, capacity, price, image_url, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		event.Title, event.Description, event.EventType, event.StartAt, event.EndAt,
		event.Location, event.Capacity, event.Price, event.ImageURL, event.OrganizerID).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return event, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `
		SELECT id, title, description, event_type, start_at, end_at,
			location, capacity, price, image_url, organizer_id, created_at
		FROM events
		WHERE id = $1
	`
	e := &models.Event{}
	var imageURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.EventType, &e.StartAt, &e.EndAt,
		&e.Location, &e.Capacity, &e.Price, &imageURL, &e.OrganizerID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	e.ImageURL = imageURL.String
	return e, nil
}

func (r *PostgresRepository) UpdateImageURL(ctx context.Context, eventID int64, imageURL string) error {
	query := `UPDATE events SET image_url = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, eventID, imageURL); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
