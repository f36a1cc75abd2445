package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/record"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

var recordColumns = []string{"id", "user_id", "year", "week", "wins", "losses", "ties", "record", "created_at"}

type RecordRepository struct {
	db sqlx.ExtContext
}

func NewRecordRepository(db sqlx.ExtContext) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Latest(ctx context.Context, userID int64, year int) (record.WeeklyRecord, bool, error) {
	query, args, err := qb.Select(recordColumns...).From("user_weekly_records").
		Where(qb.Eq("user_id", userID), qb.Eq("year", year)).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return record.WeeklyRecord{}, false, fmt.Errorf("build latest record query: %w", err)
	}

	var row weeklyRecordTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return record.WeeklyRecord{}, false, nil
		}
		return record.WeeklyRecord{}, false, fmt.Errorf("get latest record user=%d year=%d: %w", userID, year, err)
	}
	return recordFromRow(row), true, nil
}

func (r *RecordRepository) Exists(ctx context.Context, userID int64, year int, week string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("user_weekly_records").
		Where(qb.Eq("user_id", userID), qb.Eq("year", year), qb.Eq("week", week)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build count record query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		return false, fmt.Errorf("count record user=%d: %w", userID, err)
	}
	return count > 0, nil
}

func (r *RecordRepository) Append(ctx context.Context, rec record.WeeklyRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	model := weeklyRecordTableModel{
		UserID:    rec.UserID,
		Year:      rec.Year,
		Week:      rec.Week,
		Wins:      rec.Tally.Wins,
		Losses:    rec.Tally.Losses,
		Ties:      rec.Tally.Ties,
		Record:    rec.Tally.String(),
		CreatedAt: createdAt,
	}
	query, args, err := qb.InsertModel("user_weekly_records", model, "")
	if err != nil {
		return fmt.Errorf("build insert record query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert record user=%d year=%d week=%s: %w", rec.UserID, rec.Year, rec.Week, err)
	}
	return nil
}

func (r *RecordRepository) ListLatest(ctx context.Context, year int) ([]record.WeeklyRecord, error) {
	query, args, err := qb.Select("DISTINCT ON (user_id) "+joinColumns(recordColumns)).From("user_weekly_records").
		Where(qb.Eq("year", year)).
		OrderBy("user_id", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list latest records query: %w", err)
	}
	return r.selectRows(ctx, query, args)
}

func (r *RecordRepository) ListByWeek(ctx context.Context, year int, week string) ([]record.WeeklyRecord, error) {
	query, args, err := qb.Select(recordColumns...).From("user_weekly_records").
		Where(qb.Eq("year", year), qb.Eq("week", week)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list week records query: %w", err)
	}
	return r.selectRows(ctx, query, args)
}

func (r *RecordRepository) ListByUser(ctx context.Context, userID int64, year int) ([]record.WeeklyRecord, error) {
	query, args, err := qb.Select(recordColumns...).From("user_weekly_records").
		Where(qb.Eq("user_id", userID), qb.Eq("year", year)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list user records query: %w", err)
	}
	return r.selectRows(ctx, query, args)
}

func (r *RecordRepository) selectRows(ctx context.Context, query string, args []any) ([]record.WeeklyRecord, error) {
	var rows []weeklyRecordTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}

	out := make([]record.WeeklyRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordFromRow(row))
	}
	return out, nil
}

func recordFromRow(row weeklyRecordTableModel) record.WeeklyRecord {
	return record.WeeklyRecord{
		ID:        row.ID,
		UserID:    row.UserID,
		Year:      row.Year,
		Week:      row.Week,
		Tally:     record.Tally{Wins: row.Wins, Losses: row.Losses, Ties: row.Ties},
		CreatedAt: row.CreatedAt,
	}
}
