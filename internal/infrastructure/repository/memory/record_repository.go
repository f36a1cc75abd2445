package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/nfl-pickem/internal/domain/record"
)

type RecordRepository struct {
	acc accessor
}

// Latest relies on the ledger being append-only: the last matching row is the newest.
func (r *RecordRepository) Latest(_ context.Context, userID int64, year int) (record.WeeklyRecord, bool, error) {
	var (
		out   record.WeeklyRecord
		found bool
	)
	r.acc.read(func(d *dataset) {
		for i := len(d.records) - 1; i >= 0; i-- {
			if rec := d.records[i]; rec.UserID == userID && rec.Year == year {
				out, found = rec, true
				return
			}
		}
	})
	return out, found, nil
}

func (r *RecordRepository) Exists(_ context.Context, userID int64, year int, week string) (bool, error) {
	found := false
	r.acc.read(func(d *dataset) {
		for _, rec := range d.records {
			if rec.UserID == userID && rec.Year == year && rec.Week == week {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *RecordRepository) Append(_ context.Context, rec record.WeeklyRecord) error {
	return r.acc.write(func(d *dataset) error {
		rec.ID = d.nextID("user_weekly_records")
		d.records = append(d.records, rec)
		return nil
	})
}

func (r *RecordRepository) ListLatest(_ context.Context, year int) ([]record.WeeklyRecord, error) {
	latest := make(map[int64]record.WeeklyRecord)
	r.acc.read(func(d *dataset) {
		for _, rec := range d.records {
			if rec.Year == year {
				latest[rec.UserID] = rec
			}
		}
	})
	out := make([]record.WeeklyRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *RecordRepository) ListByWeek(_ context.Context, year int, week string) ([]record.WeeklyRecord, error) {
	return r.filter(func(rec record.WeeklyRecord) bool { return rec.Year == year && rec.Week == week }), nil
}

func (r *RecordRepository) ListByUser(_ context.Context, userID int64, year int) ([]record.WeeklyRecord, error) {
	return r.filter(func(rec record.WeeklyRecord) bool { return rec.UserID == userID && rec.Year == year }), nil
}

func (r *RecordRepository) filter(pred func(record.WeeklyRecord) bool) []record.WeeklyRecord {
	var out []record.WeeklyRecord
	r.acc.read(func(d *dataset) {
		for _, rec := range d.records {
			if pred(rec) {
				out = append(out, rec)
			}
		}
	})
	return out
}
