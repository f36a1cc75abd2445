package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

type TeamRepository struct {
	db sqlx.ExtContext
}

func NewTeamRepository(db sqlx.ExtContext) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select("id", "name", "logo_file").From("teams").OrderBy("name").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *TeamRepository) FindByName(ctx context.Context, name string) (team.Team, bool, error) {
	return r.getOne(ctx, qb.Eq("name", strings.TrimSpace(name)))
}

func (r *TeamRepository) getOne(ctx context.Context, cond qb.Condition) (team.Team, bool, error) {
	query, args, err := qb.Select("id", "name", "logo_file").From("teams").Where(cond).Limit(1).ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team: %w", err)
	}
	return teamFromRow(row), true, nil
}

// Seed inserts the missing teams; names already present are left untouched.
func (r *TeamRepository) Seed(ctx context.Context, teams []team.Team) (int, error) {
	added := 0
	for _, t := range teams {
		name := strings.TrimSpace(t.Name)
		logo := t.LogoFile
		if logo == "" {
			logo = team.LogoFileFor(name)
		}

		sqlQuery, args, err := sqlx.Named(`
INSERT INTO teams (name, logo_file)
VALUES (:name, :logo_file)
ON CONFLICT (name) DO NOTHING`, map[string]any{
			"name":      name,
			"logo_file": logo,
		})
		if err != nil {
			return added, fmt.Errorf("bind seed team %s query: %w", name, err)
		}
		sqlQuery = r.db.Rebind(sqlQuery)
		res, err := r.db.ExecContext(ctx, sqlQuery, args...)
		if err != nil {
			return added, fmt.Errorf("seed team %s: %w", name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	return added, nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{ID: row.ID, Name: row.Name, LogoFile: row.LogoFile}
}
