package events

import (
	"context"

	"github.com/linkt-app/linkt/internal/server/models"
)

// Repository is the event store. The scan paths only read from it; writes
// come from event management and poster uploads.
type Repository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	UpdateImageURL(ctx context.Context, eventID int64, imageURL string) error
}
