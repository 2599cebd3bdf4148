package models

import "time"

// Event is owned by exactly one organizer; ownership is the authorization
// key for ticket scanning and scan statistics.
type Event struct {
	ID          int64
	Title       string
	Description string
	EventType   string
	StartAt     time.Time
	EndAt       time.Time
	Location    string
	Capacity    int
	Price       float64
	ImageURL    string
	OrganizerID int64
	CreatedAt   time.Time
}
