package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkt-app/linkt/internal/common"
	"github.com/linkt-app/linkt/internal/server/models"
)

type scanHarness struct {
	svc       *ScanService
	rm        *fakeRepoManager
	organizer *models.User
	student   *models.User
	event     *models.Event
	ticket    *models.Ticket
}

func newScanHarness(t *testing.T) *scanHarness {
	t.Helper()
	rm := newFakeRepoManager()

	organizer := rm.users.add(&models.User{
		Email:     "org@example.com",
		FirstName: "Olga",
		LastName:  "Ozols",
		Role:      models.RoleOrganizer,
	})
	student := rm.users.add(&models.User{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Role:      models.RoleStudent,
	})
	event := rm.events.add(&models.Event{
		Title:       "Spring Ball",
		StartAt:     time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC),
		Capacity:    100,
		OrganizerID: organizer.ID,
	})
	ticket := rm.tickets.add(&models.Ticket{
		StudentID: student.ID,
		EventID:   event.ID,
	})
	ticket.QRCode = models.FormatQRCode(event.ID, ticket.ID)

	return &scanHarness{
		svc:       NewScanService(nil, rm, discardLogger()),
		rm:        rm,
		organizer: organizer,
		student:   student,
		event:     event,
		ticket:    ticket,
	}
}

func TestValidateTicket_Success(t *testing.T) {
	h := newScanHarness(t)
	scanTime := time.Date(2026, 5, 1, 19, 30, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return scanTime }

	res, err := h.svc.ValidateTicket(context.Background(), h.ticket.QRCode, h.event.ID, h.organizer.ID)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, models.ScanSuccess, res.Status)
	assert.Equal(t, "Ticket successfully scanned for Alice Smith", res.Message)
	require.NotNil(t, res.Ticket)
	assert.Equal(t, h.ticket.ID, res.Ticket.TicketID)
	assert.Equal(t, "Alice Smith", res.Ticket.StudentName)
	assert.Equal(t, "alice@example.com", res.Ticket.StudentEmail)
	assert.Equal(t, "Spring Ball", res.Ticket.EventTitle)
	assert.Equal(t, "General Admission", res.Ticket.TicketType)
	assert.Equal(t, "Olga Ozols", res.ScannedBy)
	require.NotNil(t, res.ScannedAt)
	assert.Equal(t, scanTime, *res.ScannedAt)

	stored, err := h.rm.tickets.GetByQRCode(context.Background(), h.ticket.QRCode)
	require.NoError(t, err)
	assert.True(t, stored.IsScanned)
	require.NotNil(t, stored.ScannedByID)
	assert.Equal(t, h.organizer.ID, *stored.ScannedByID)
}

func TestValidateTicket_InvalidCode(t *testing.T) {
	h := newScanHarness(t)

	res, err := h.svc.ValidateTicket(context.Background(), "LINKT-99-99", h.event.ID, h.organizer.ID)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, models.ScanInvalid, res.Status)
	assert.Equal(t, "Invalid ticket code", res.Message)
	assert.Nil(t, res.Ticket)
}

func TestValidateTicket_WrongEvent(t *testing.T) {
	h := newScanHarness(t)
	other := h.rm.events.add(&models.Event{
		Title:       "Autumn Gala",
		OrganizerID: h.organizer.ID,
	})

	res, err := h.svc.ValidateTicket(context.Background(), h.ticket.QRCode, other.ID, h.organizer.ID)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, models.ScanWrongEvent, res.Status)
	assert.Equal(t, "Ticket is for a different event: Spring Ball", res.Message, "message names the ticket's own event")
}

func TestValidateTicket_AlreadyScanned(t *testing.T) {
	h := newScanHarness(t)
	first := time.Date(2026, 5, 1, 19, 15, 0, 0, time.UTC)

	ok, err := h.rm.tickets.MarkScanned(context.Background(), h.ticket.ID, h.organizer.ID, first)
	require.NoError(t, err)
	require.True(t, ok)

	res, err := h.svc.ValidateTicket(context.Background(), h.ticket.QRCode, h.event.ID, h.organizer.ID)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, models.ScanAlreadyScanned, res.Status)
	assert.Equal(t, "Ticket already scanned at May 01, 2026 19:15 by Olga Ozols", res.Message)
	require.NotNil(t, res.ScannedAt)
	assert.Equal(t, first, *res.ScannedAt)
	assert.Equal(t, "Olga Ozols", res.ScannedBy)
}

func TestValidateTicket_AlreadyScanned_UnknownScanner(t *testing.T) {
	h := newScanHarness(t)
	first := time.Date(2026, 5, 1, 19, 15, 0, 0, time.UTC)
	missingScanner := int64(4040)

	h.ticket.IsScanned = true
	h.ticket.ScannedAt = timePtr(first)
	h.ticket.ScannedByID = &missingScanner

	res, err := h.svc.ValidateTicket(context.Background(), h.ticket.QRCode, h.event.ID, h.organizer.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ScanAlreadyScanned, res.Status)
	assert.Equal(t, "Ticket already scanned at May 01, 2026 19:15 by Unknown", res.Message)
}

func TestValidateTicket_FatalErrors(t *testing.T) {
	t.Run("event not found", func(t *testing.T) {
		h := newScanHarness(t)
		// a ticket pointing at a vanished event
		orphan := h.rm.tickets.add(&models.Ticket{StudentID: h.student.ID, EventID: 999})
		orphan.QRCode = models.FormatQRCode(999, orphan.ID)

		_, err := h.svc.ValidateTicket(context.Background(), orphan.QRCode, 999, h.organizer.ID)
		assert.ErrorIs(t, err, common.ErrEventNotFound)
	})

	t.Run("actor does not own the event", func(t *testing.T) {
		h := newScanHarness(t)
		stranger := h.rm.users.add(&models.User{
			Email: "other@example.com",
			Role:  models.RoleOrganizer,
		})

		_, err := h.svc.ValidateTicket(context.Background(), h.ticket.QRCode, h.event.ID, stranger.ID)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("actor not found", func(t *testing.T) {
		h := newScanHarness(t)
		h.event.OrganizerID = 4040

		_, err := h.svc.ValidateTicket(context.Background(), h.ticket.QRCode, h.event.ID, 4040)
		assert.ErrorIs(t, err, common.ErrActorNotFound)
	})
}

// Two goroutines present the same code at once; exactly one may win.
func TestValidateTicket_ConcurrentDoubleScan(t *testing.T) {
	h := newScanHarness(t)

	const n = 8
	results := make([]*models.ScanResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.svc.ValidateTicket(context.Background(), h.ticket.QRCode, h.event.ID, h.organizer.ID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		switch results[i].Status {
		case models.ScanSuccess:
			successes++
		case models.ScanAlreadyScanned:
		default:
			t.Fatalf("unexpected status %q", results[i].Status)
		}
	}
	assert.Equal(t, 1, successes, "exactly one scan wins")
}

func TestGetScanStats(t *testing.T) {
	h := newScanHarness(t)

	// 3 tickets total, 2 scanned
	for i := 0; i < 2; i++ {
		tk := h.rm.tickets.add(&models.Ticket{StudentID: h.student.ID, EventID: h.event.ID})
		tk.QRCode = models.FormatQRCode(h.event.ID, tk.ID)
		ok, err := h.rm.tickets.MarkScanned(context.Background(), tk.ID, h.organizer.ID, time.Now())
		require.NoError(t, err)
		require.True(t, ok)
	}

	stats, err := h.svc.GetScanStats(context.Background(), h.event.ID, h.organizer.ID)
	require.NoError(t, err)

	assert.Equal(t, h.event.ID, stats.EventID)
	assert.Equal(t, "Spring Ball", stats.EventName)
	assert.Equal(t, 3, stats.TotalTickets)
	assert.Equal(t, 2, stats.ScannedCount)
	assert.Equal(t, 1, stats.RemainingCount)
}

func TestGetScanStats_Errors(t *testing.T) {
	h := newScanHarness(t)

	t.Run("unknown event", func(t *testing.T) {
		_, err := h.svc.GetScanStats(context.Background(), 999, h.organizer.ID)
		assert.ErrorIs(t, err, common.ErrEventNotFound)
	})

	t.Run("not the owner", func(t *testing.T) {
		_, err := h.svc.GetScanStats(context.Background(), h.event.ID, h.student.ID)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})
}

func ExampleFormatQRCode() {
	fmt.Println(models.FormatQRCode(42, 1337))
	// Output: LINKT-42-1337
}
