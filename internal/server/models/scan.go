package models

import "time"

// ScanStatus classifies the outcome of one scan attempt. These are business
// outcomes returned as data; they are never modeled as errors.
type ScanStatus string

const (
	ScanSuccess        ScanStatus = "SUCCESS"
	ScanInvalid        ScanStatus = "INVALID"
	ScanWrongEvent     ScanStatus = "WRONG_EVENT"
	ScanAlreadyScanned ScanStatus = "ALREADY_SCANNED"
)

// TicketData is the snapshot returned to the scanning client on SUCCESS.
type TicketData struct {
	TicketID     int64     `json:"ticketId"`
	StudentName  string    `json:"studentName"`
	StudentEmail string    `json:"studentEmail"`
	EventTitle   string    `json:"eventTitle"`
	EventStart   time.Time `json:"eventStart"`
	TicketType   string    `json:"ticketType"`
}

// ScanResult is the structured outcome of a scan attempt. Only ScanSuccess
// mutates ticket state; the other statuses are read-only outcomes.
type ScanResult struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Status    ScanStatus  `json:"status"`
	Ticket    *TicketData `json:"ticket,omitempty"`
	ScannedAt *time.Time  `json:"scannedAt,omitempty"`
	ScannedBy string      `json:"scannedBy,omitempty"`
}

// ScanStats aggregates admission progress for one event. Counts are derived
// from the ticket set at query time; nothing is cached.
type ScanStats struct {
	EventID        int64  `json:"eventId"`
	EventName      string `json:"eventName"`
	TotalTickets   int    `json:"totalTickets"`
	ScannedCount   int    `json:"scannedCount"`
	RemainingCount int    `json:"remainingCount"`
}
