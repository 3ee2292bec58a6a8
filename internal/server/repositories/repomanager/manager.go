package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/secondmind/internal/dbx"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/entities"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	MigrationStatus(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Entities(db dbx.DBTX) entities.Repository
}
