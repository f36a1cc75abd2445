package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/match"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

var matchColumns = []string{"id", "team1_id", "team2_id", "kickoff_at", "season", "week"}

type MatchRepository struct {
	db sqlx.ExtContext
}

func NewMatchRepository(db sqlx.ExtContext) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *MatchRepository) FindByKickoff(ctx context.Context, team1ID, team2ID int64, kickoff time.Time) (match.Match, bool, error) {
	return r.getOne(ctx,
		qb.Eq("team1_id", team1ID),
		qb.Eq("team2_id", team2ID),
		qb.Expr("date_trunc('minute', kickoff_at) = ?", naive(kickoff).Truncate(time.Minute)),
	)
}

func (r *MatchRepository) FindOnDate(ctx context.Context, team1ID, team2ID int64, day time.Time) (match.Match, bool, error) {
	start := match.StartOfDay(naive(day))
	return r.getOne(ctx,
		qb.Eq("team1_id", team1ID),
		qb.Eq("team2_id", team2ID),
		qb.Gte("kickoff_at", start),
		qb.Lt("kickoff_at", start.AddDate(0, 0, 1)),
	)
}

func (r *MatchRepository) getOne(ctx context.Context, conds ...qb.Condition) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(conds...).
		OrderBy("kickoff_at", "id").
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListByWeek(ctx context.Context, season int, week string) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(qb.Eq("season", season), qb.Eq("week", week)).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches season=%d week=%s: %w", season, week, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) (match.Match, error) {
	model := matchTableModel{
		Team1ID:   m.Team1ID,
		Team2ID:   m.Team2ID,
		KickoffAt: naive(m.KickoffAt),
		Season:    m.Season,
		Week:      m.Week,
	}
	query, args, err := qb.InsertModel("matches", model, "RETURNING id")
	if err != nil {
		return match.Match{}, fmt.Errorf("build insert match query: %w", err)
	}

	if err := sqlx.GetContext(ctx, r.db, &m.ID, query, args...); err != nil {
		return match.Match{}, fmt.Errorf("insert match %d vs %d: %w", m.Team1ID, m.Team2ID, err)
	}
	return m, nil
}

func (r *MatchRepository) GetResult(ctx context.Context, matchID int64) (match.Result, bool, error) {
	query, args, err := qb.Select("id", "match_id", "score", "winner_team_id").From("match_results").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Result{}, false, fmt.Errorf("build get result query: %w", err)
	}

	var row matchResultTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Result{}, false, nil
		}
		return match.Result{}, false, fmt.Errorf("get result match=%d: %w", matchID, err)
	}
	return resultFromRow(row), true, nil
}

func (r *MatchRepository) ListResults(ctx context.Context, matchIDs []int64) ([]match.Result, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	query, args, err := qb.Select("id", "match_id", "score", "winner_team_id").From("match_results").
		Where(qb.InInt64("match_id", matchIDs)).
		OrderBy("match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list results query: %w", err)
	}

	var rows []matchResultTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	out := make([]match.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, resultFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) CreateResult(ctx context.Context, res match.Result) (match.Result, error) {
	model := matchResultTableModel{
		MatchID:      res.MatchID,
		Score:        res.Score,
		WinnerTeamID: int64PtrToNull(res.WinnerTeamID),
	}
	query, args, err := qb.InsertModel("match_results", model, "RETURNING id")
	if err != nil {
		return match.Result{}, fmt.Errorf("build insert result query: %w", err)
	}

	if err := sqlx.GetContext(ctx, r.db, &res.ID, query, args...); err != nil {
		return match.Result{}, fmt.Errorf("insert result match=%d: %w", res.MatchID, err)
	}
	return res, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:        row.ID,
		Team1ID:   row.Team1ID,
		Team2ID:   row.Team2ID,
		KickoffAt: naive(row.KickoffAt),
		Season:    row.Season,
		Week:      row.Week,
	}
}

func resultFromRow(row matchResultTableModel) match.Result {
	return match.Result{
		ID:           row.ID,
		MatchID:      row.MatchID,
		Score:        row.Score,
		WinnerTeamID: nullInt64Ptr(row.WinnerTeamID),
	}
}
