package pick

import "time"

// Pick is a user's chosen winner for one match. There is at most one per
// (user, match); a new choice replaces the team.
type Pick struct {
	ID        int64
	UserID    int64
	TeamID    int64
	MatchID   int64
	UpdatedAt time.Time
}
