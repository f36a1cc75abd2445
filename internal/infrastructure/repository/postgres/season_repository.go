package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

// reconcileLockKey is the advisory lock taken by reconcile transactions.
const reconcileLockKey int64 = 0x4e464c5049434b // "NFLPICK"

type SeasonRepository struct {
	db sqlx.ExtContext
}

func NewSeasonRepository(db sqlx.ExtContext) *SeasonRepository {
	return &SeasonRepository{db: db}
}

// LockRun blocks until no other transaction holds the reconcile lock. The
// lock is released when the surrounding transaction ends.
func (r *SeasonRepository) LockRun(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, reconcileLockKey); err != nil {
		return fmt.Errorf("acquire reconcile lock: %w", err)
	}
	return nil
}

func (r *SeasonRepository) GetCurrent(ctx context.Context) (season.Pointer, bool, error) {
	query, args, err := qb.Select("year", "week").From("current_season").Where(qb.Eq("id", 1)).ToSQL()
	if err != nil {
		return season.Pointer{}, false, fmt.Errorf("build get current season query: %w", err)
	}

	var row seasonIndexTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Pointer{}, false, nil
		}
		return season.Pointer{}, false, fmt.Errorf("get current season: %w", err)
	}
	return season.Pointer{Year: row.Year, Week: row.Week}, true, nil
}

func (r *SeasonRepository) SetCurrent(ctx context.Context, p season.Pointer) error {
	query, args, err := qb.InsertInto("current_season").
		Columns("id", "year", "week").
		Values(1, p.Year, p.Week).
		Suffix(`ON CONFLICT (id) DO UPDATE SET year = EXCLUDED.year, week = EXCLUDED.week, updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set current season query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set current season %s: %w", p, err)
	}
	return nil
}

func (r *SeasonRepository) HasEntry(ctx context.Context, year int, week string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("season_index").
		Where(qb.Eq("year", year), qb.Eq("week", week)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build count season index query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		return false, fmt.Errorf("count season index: %w", err)
	}
	return count > 0, nil
}

func (r *SeasonRepository) AddEntry(ctx context.Context, year int, week string) error {
	model := seasonIndexTableModel{Year: year, Week: week}
	query, args, err := qb.InsertModel("season_index", model, "ON CONFLICT (year, week) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert season index query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert season index year=%d week=%s: %w", year, week, err)
	}
	return nil
}

func (r *SeasonRepository) ListYears(ctx context.Context) ([]int, error) {
	query, args, err := qb.Select("DISTINCT year").From("season_index").OrderBy("year DESC").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list years query: %w", err)
	}

	var years []int
	if err := sqlx.SelectContext(ctx, r.db, &years, query, args...); err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return years, nil
}

func (r *SeasonRepository) ListWeeks(ctx context.Context, year int) ([]string, error) {
	query, args, err := qb.Select("week").From("season_index").
		Where(qb.Eq("year", year)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weeks query: %w", err)
	}

	var weeks []string
	if err := sqlx.SelectContext(ctx, r.db, &weeks, query, args...); err != nil {
		return nil, fmt.Errorf("list weeks year=%d: %w", year, err)
	}
	return weeks, nil
}
