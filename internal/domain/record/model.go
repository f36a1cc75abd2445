package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tally is a win-loss-tie count.
type Tally struct {
	Wins   int
	Losses int
	Ties   int
}

func (t Tally) Add(o Tally) Tally {
	return Tally{Wins: t.Wins + o.Wins, Losses: t.Losses + o.Losses, Ties: t.Ties + o.Ties}
}

func (t Tally) Games() int {
	return t.Wins + t.Losses + t.Ties
}

// String renders "(W-L)", or "(W-L-T)" once a tie exists.
func (t Tally) String() string {
	if t.Ties == 0 {
		return fmt.Sprintf("(%d-%d)", t.Wins, t.Losses)
	}
	return fmt.Sprintf("(%d-%d-%d)", t.Wins, t.Losses, t.Ties)
}

// ParseTally reads the "(W-L)" and "(W-L-T)" forms, with or without parentheses.
func ParseTally(raw string) (Tally, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	parts := strings.Split(s, "-")
	if len(parts) < 2 || len(parts) > 3 {
		return Tally{}, fmt.Errorf("invalid record %q", raw)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return Tally{}, fmt.Errorf("invalid record %q", raw)
		}
		nums[i] = n
	}
	return Tally{Wins: nums[0], Losses: nums[1], Ties: nums[2]}, nil
}

// Outcome scores one pick against a match result.
func Outcome(pickedTeamID int64, winnerTeamID *int64) Tally {
	switch {
	case winnerTeamID == nil:
		return Tally{Ties: 1}
	case *winnerTeamID == pickedTeamID:
		return Tally{Wins: 1}
	default:
		return Tally{Losses: 1}
	}
}

// WeeklyRecord is one row of the append-only cumulative ledger. The newest
// row of a user within a year is their standing.
type WeeklyRecord struct {
	ID        int64
	UserID    int64
	Year      int
	Week      string
	Tally     Tally
	CreatedAt time.Time
}

func (r WeeklyRecord) Record() string {
	return r.Tally.String()
}
