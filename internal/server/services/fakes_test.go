package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/linkt-app/linkt/internal/common"
	"github.com/linkt-app/linkt/internal/dbx"
	"github.com/linkt-app/linkt/internal/logging"
	"github.com/linkt-app/linkt/internal/server/models"
	eventsrepo "github.com/linkt-app/linkt/internal/server/repositories/events"
	ticketsrepo "github.com/linkt-app/linkt/internal/server/repositories/tickets"
	usersrepo "github.com/linkt-app/linkt/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func strPtr(s string) *string         { return &s }
func timePtr(tm time.Time) *time.Time { return &tm }

// --- in-memory users store ---

// fakeUsersRepo keeps users in maps and implements the Consume* calls with
// the same check-and-clear semantics the Postgres store provides.
type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[int64]*models.User
	nextID int64

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = f.nextID
		f.nextID++
	} else if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.add(u), nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsersRepo) SetVerificationCode(ctx context.Context, userID int64, code string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.VerificationCode = &code
	u.VerificationCodeExpiry = &expiry
	return nil
}

func (f *fakeUsersRepo) ConsumeVerificationCode(ctx context.Context, email, code string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email != email || u.EmailVerified {
			continue
		}
		if u.VerificationCode == nil || *u.VerificationCode != code {
			return false, nil
		}
		if u.VerificationCodeExpiry == nil || u.VerificationCodeExpiry.Before(now) {
			return false, nil
		}
		u.EmailVerified = true
		u.VerificationCode = nil
		u.VerificationCodeExpiry = nil
		return true, nil
	}
	return false, nil
}

func (f *fakeUsersRepo) SetTwoFactorCode(ctx context.Context, userID int64, code string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.TwoFactorCode = &code
	u.TwoFactorCodeExpiry = &expiry
	return nil
}

func (f *fakeUsersRepo) ConsumeTwoFactorCode(ctx context.Context, email, code string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email != email {
			continue
		}
		if u.TwoFactorCode == nil || *u.TwoFactorCode != code {
			return false, nil
		}
		if u.TwoFactorCodeExpiry == nil || u.TwoFactorCodeExpiry.Before(now) {
			return false, nil
		}
		u.TwoFactorCode = nil
		u.TwoFactorCodeExpiry = nil
		return true, nil
	}
	return false, nil
}

// --- in-memory events store ---

type fakeEventsRepo struct {
	mu     sync.Mutex
	byID   map[int64]*models.Event
	nextID int64
}

func newFakeEventsRepo() *fakeEventsRepo {
	return &fakeEventsRepo{byID: map[int64]*models.Event{}, nextID: 1}
}

func (f *fakeEventsRepo) add(e *models.Event) *models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == 0 {
		e.ID = f.nextID
		f.nextID++
	} else if e.ID >= f.nextID {
		f.nextID = e.ID + 1
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventsRepo) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	return f.add(e), nil
}

func (f *fakeEventsRepo) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEventsRepo) UpdateImageURL(ctx context.Context, eventID int64, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[eventID]
	if !ok {
		return common.ErrorNotFound
	}
	e.ImageURL = imageURL
	return nil
}

// --- in-memory tickets store ---

// fakeTicketsRepo guards MarkScanned with a mutex so concurrent scans see
// the same winner-takes-all behavior as the conditional SQL update.
type fakeTicketsRepo struct {
	mu     sync.Mutex
	byID   map[int64]*models.Ticket
	nextID int64
}

func newFakeTicketsRepo() *fakeTicketsRepo {
	return &fakeTicketsRepo{byID: map[int64]*models.Ticket{}, nextID: 1}
}

func (f *fakeTicketsRepo) add(tk *models.Ticket) *models.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tk.ID == 0 {
		tk.ID = f.nextID
		f.nextID++
	} else if tk.ID >= f.nextID {
		f.nextID = tk.ID + 1
	}
	f.byID[tk.ID] = tk
	return tk
}

func (f *fakeTicketsRepo) Create(ctx context.Context, tk *models.Ticket) (*models.Ticket, error) {
	return f.add(tk), nil
}

func (f *fakeTicketsRepo) SetQRCode(ctx context.Context, ticketID int64, qrCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tk, ok := f.byID[ticketID]
	if !ok {
		return common.ErrorNotFound
	}
	if tk.QRCode != "" {
		return nil
	}
	tk.QRCode = qrCode
	return nil
}

func (f *fakeTicketsRepo) GetByQRCode(ctx context.Context, qrCode string) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tk := range f.byID {
		if tk.QRCode == qrCode {
			c := *tk
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTicketsRepo) ListByEvent(ctx context.Context, eventID int64) ([]*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ticket
	for _, tk := range f.byID {
		if tk.EventID == eventID {
			c := *tk
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeTicketsRepo) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, tk := range f.byID {
		if tk.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTicketsRepo) CountByEventScanned(ctx context.Context, eventID int64, scanned bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, tk := range f.byID {
		if tk.EventID == eventID && tk.IsScanned == scanned {
			n++
		}
	}
	return n, nil
}

func (f *fakeTicketsRepo) MarkScanned(ctx context.Context, ticketID, actorID int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tk, ok := f.byID[ticketID]
	if !ok {
		return false, common.ErrorNotFound
	}
	if tk.IsScanned {
		return false, nil
	}
	tk.IsScanned = true
	tk.ScannedAt = &at
	tk.ScannedByID = &actorID
	return true, nil
}

// --- repo manager over the fakes ---

type fakeRepoManager struct {
	users   *fakeUsersRepo
	events  *fakeEventsRepo
	tickets *fakeTicketsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:   newFakeUsersRepo(),
		events:  newFakeEventsRepo(),
		tickets: newFakeTicketsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *fakeRepoManager) Events(db dbx.DBTX) eventsrepo.Repository     { return m.events }
func (m *fakeRepoManager) Tickets(db dbx.DBTX) ticketsrepo.Repository   { return m.tickets }

// --- recording collaborators ---

type sentCode struct {
	email string
	name  string
	code  string
}

type recordingNotifier struct {
	mu           sync.Mutex
	verification []sentCode
	twoFactor    []sentCode
	sendErr      error
}

func (n *recordingNotifier) SendVerificationCode(ctx context.Context, email, name, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verification = append(n.verification, sentCode{email, name, code})
	return n.sendErr
}

func (n *recordingNotifier) Send2FACode(ctx context.Context, email, name, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.twoFactor = append(n.twoFactor, sentCode{email, name, code})
	return n.sendErr
}

type stubTokens struct {
	token  string
	err    error
	issued int
}

func (s *stubTokens) Issue(email, role string) (string, error) {
	s.issued++
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
