package repomanager

import (
	"context"
	"database/sql"

	"github.com/linkt-app/linkt/internal/dbx"
	"github.com/linkt-app/linkt/internal/server/repositories/events"
	"github.com/linkt-app/linkt/internal/server/repositories/tickets"
	"github.com/linkt-app/linkt/internal/server/repositories/users"
)

// RepositoryManager vends store implementations bound to either the pool or
// an open transaction, and runs schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Events(db dbx.DBTX) events.Repository
	Tickets(db dbx.DBTX) tickets.Repository
}
