package models

import (
	"fmt"
	"time"

	"github.com/linkt-app/linkt/internal/common"
)

// Ticket admits one student to one event. QRCode is globally unique and
// immutable once assigned; IsScanned transitions false→true exactly once
// and is never reset.
type Ticket struct {
	ID          int64      `json:"id"`
	QRCode      string     `json:"qrCode"`
	StudentID   int64      `json:"studentId"`
	EventID     int64      `json:"eventId"`
	IsScanned   bool       `json:"isScanned"`
	ScannedAt   *time.Time `json:"scannedAt,omitempty"`
	ScannedByID *int64     `json:"scannedById,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FormatQRCode builds the ticket QR payload for the given event and ticket
// ids: LINKT-{eventId}-{ticketId}. Scanning clients depend on this exact
// shape, so treat it as a wire contract.
func FormatQRCode(eventID, ticketID int64) string {
	return fmt.Sprintf("%s-%d-%d", common.QRCodePrefix, eventID, ticketID)
}
