package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/standing"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

type StandingRepository struct {
	db sqlx.ExtContext
}

func NewStandingRepository(db sqlx.ExtContext) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) Exists(ctx context.Context, teamID int64, year int, week string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("weekly_team_standings").
		Where(qb.Eq("team_id", teamID), qb.Eq("year", year), qb.Eq("week", week)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build count standing query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		return false, fmt.Errorf("count standing team=%d: %w", teamID, err)
	}
	return count > 0, nil
}

func (r *StandingRepository) Create(ctx context.Context, s standing.WeeklyTeamStanding) error {
	model := standingTableModel{TeamID: s.TeamID, Year: s.Year, Week: s.Week, Record: s.Record}
	query, args, err := qb.InsertModel("weekly_team_standings", model, "")
	if err != nil {
		return fmt.Errorf("build insert standing query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert standing team=%d year=%d week=%s: %w", s.TeamID, s.Year, s.Week, err)
	}
	return nil
}

func (r *StandingRepository) ListByWeek(ctx context.Context, year int, week string) ([]standing.WeeklyTeamStanding, error) {
	query, args, err := qb.Select("id", "team_id", "year", "week", "record").From("weekly_team_standings").
		Where(qb.Eq("year", year), qb.Eq("week", week)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standings query: %w", err)
	}

	var rows []standingTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list standings year=%d week=%s: %w", year, week, err)
	}

	out := make([]standing.WeeklyTeamStanding, 0, len(rows))
	for _, row := range rows {
		out = append(out, standing.WeeklyTeamStanding{
			ID:     row.ID,
			TeamID: row.TeamID,
			Year:   row.Year,
			Week:   row.Week,
			Record: row.Record,
		})
	}
	return out, nil
}
