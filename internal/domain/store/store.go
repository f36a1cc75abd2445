package store

import (
	"context"

	"github.com/riskibarqy/nfl-pickem/internal/domain/match"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/domain/record"
	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
	"github.com/riskibarqy/nfl-pickem/internal/domain/standing"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
	"github.com/riskibarqy/nfl-pickem/internal/domain/user"
)

// Repositories bundles every repository bound to the same connection or
// transaction.
type Repositories struct {
	Teams     team.Repository
	Matches   match.Repository
	Standings standing.Repository
	Seasons   season.Repository
	Picks     pick.Repository
	Records   record.Repository
	Users     user.Repository
}

// UnitOfWork runs fn against repositories bound to a single transaction.
// The writes commit when fn returns nil and are discarded otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
