package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/store"
)

// UnitOfWork runs a function inside one database transaction.
type UnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, Repositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Repositories binds every repository to q, which is either the pool or a
// transaction.
func Repositories(q sqlx.ExtContext) store.Repositories {
	return store.Repositories{
		Teams:     NewTeamRepository(q),
		Matches:   NewMatchRepository(q),
		Standings: NewStandingRepository(q),
		Seasons:   NewSeasonRepository(q),
		Picks:     NewPickRepository(q),
		Records:   NewRecordRepository(q),
		Users:     NewUserRepository(q),
	}
}
