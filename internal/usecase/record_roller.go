package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/match"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/domain/record"
	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
	"github.com/riskibarqy/nfl-pickem/internal/domain/store"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

type RollResult struct {
	Appended      int `json:"appended"`
	AlreadyRolled int `json:"already_rolled"`
}

// RecordRoller appends one cumulative record row per user for a finished
// week. Records carry forward within a year only; the first week of a new
// year starts from (0-0).
type RecordRoller struct {
	logger *logging.Logger
	now    func() time.Time
}

func NewRecordRoller(logger *logging.Logger) *RecordRoller {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecordRoller{
		logger: logger.Named("roller"),
		now:    time.Now,
	}
}

// Roll scores every user's picks on the finished matches and appends the
// new cumulative row. Users that already have a row for the week are left
// alone, so calling Roll again for the same week is a no-op.
func (r *RecordRoller) Roll(ctx context.Context, repos store.Repositories, week season.Pointer, finishedMatchIDs []int64) (result RollResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecordRoller.Roll", weekAttributes(week.Year, week.Week)...)
	defer func() { endSpan(span, err) }()

	results, err := repos.Matches.ListResults(ctx, finishedMatchIDs)
	if err != nil {
		return RollResult{}, fmt.Errorf("list match results: %w", err)
	}
	winners := make(map[int64]match.Result, len(results))
	for _, res := range results {
		winners[res.MatchID] = res
	}

	picks, err := repos.Picks.ListByMatches(ctx, finishedMatchIDs)
	if err != nil {
		return RollResult{}, fmt.Errorf("list picks: %w", err)
	}
	picksByUser := make(map[int64][]pick.Pick)
	for _, p := range picks {
		picksByUser[p.UserID] = append(picksByUser[p.UserID], p)
	}

	users, err := repos.Users.List(ctx)
	if err != nil {
		return RollResult{}, fmt.Errorf("list users: %w", err)
	}

	now := r.now().UTC()
	for _, u := range users {
		rolled, err := repos.Records.Exists(ctx, u.ID, week.Year, week.Week)
		if err != nil {
			return RollResult{}, fmt.Errorf("check record user=%d: %w", u.ID, err)
		}
		if rolled {
			result.AlreadyRolled++
			continue
		}

		var carried record.Tally
		prev, ok, err := repos.Records.Latest(ctx, u.ID, week.Year)
		if err != nil {
			return RollResult{}, fmt.Errorf("latest record user=%d: %w", u.ID, err)
		}
		if ok {
			carried = prev.Tally
		}

		next := carried.Add(weekDelta(picksByUser[u.ID], winners))
		if err := repos.Records.Append(ctx, record.WeeklyRecord{
			UserID:    u.ID,
			Year:      week.Year,
			Week:      week.Week,
			Tally:     next,
			CreatedAt: now,
		}); err != nil {
			return RollResult{}, fmt.Errorf("append record user=%d: %w", u.ID, err)
		}
		result.Appended++
		r.logger.DebugContext(ctx, "user record rolled", "user_id", u.ID, "week", week.String(), "record", next.String())
	}

	return result, nil
}

// weekDelta scores one user's picks. Picks on matches without a result
// count for nothing, and so do matches the user did not pick.
func weekDelta(picks []pick.Pick, results map[int64]match.Result) record.Tally {
	var delta record.Tally
	for _, p := range picks {
		res, ok := results[p.MatchID]
		if !ok {
			continue
		}
		delta = delta.Add(record.Outcome(p.TeamID, res.WinnerTeamID))
	}
	return delta
}
