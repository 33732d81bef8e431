package repomanager

import (
	"context"
	"database/sql"

	"github.com/MohamedLemine13/JobPortal/internal/dbx"
	"github.com/MohamedLemine13/JobPortal/internal/server/repositories/sessions"
	"github.com/MohamedLemine13/JobPortal/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to an arbitrary
// DBTX, so services can use the same constructors inside and outside a
// transaction, and exposes the schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
