package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

type PickRepository struct {
	db sqlx.ExtContext
}

func NewPickRepository(db sqlx.ExtContext) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) Upsert(ctx context.Context, p pick.Pick) (pick.Pick, error) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	model := pickTableModel{UserID: p.UserID, MatchID: p.MatchID, TeamID: p.TeamID, UpdatedAt: p.UpdatedAt}
	query, args, err := qb.InsertModel("user_picks", model, `ON CONFLICT (user_id, match_id)
DO UPDATE SET team_id = EXCLUDED.team_id, updated_at = EXCLUDED.updated_at
RETURNING id`)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("build upsert pick query: %w", err)
	}

	if err := sqlx.GetContext(ctx, r.db, &p.ID, query, args...); err != nil {
		return pick.Pick{}, fmt.Errorf("upsert pick user=%d match=%d: %w", p.UserID, p.MatchID, err)
	}
	return p, nil
}

func (r *PickRepository) ListByUser(ctx context.Context, userID int64, matchIDs []int64) ([]pick.Pick, error) {
	return r.list(ctx, qb.Eq("user_id", userID), qb.InInt64("match_id", matchIDs))
}

func (r *PickRepository) ListByMatches(ctx context.Context, matchIDs []int64) ([]pick.Pick, error) {
	return r.list(ctx, qb.InInt64("match_id", matchIDs))
}

func (r *PickRepository) list(ctx context.Context, conds ...qb.Condition) ([]pick.Pick, error) {
	query, args, err := qb.Select("id", "user_id", "match_id", "team_id", "updated_at").From("user_picks").
		Where(conds...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks query: %w", err)
	}

	var rows []pickTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pick.Pick{
			ID:        row.ID,
			UserID:    row.UserID,
			MatchID:   row.MatchID,
			TeamID:    row.TeamID,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}
