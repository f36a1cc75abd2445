package standing

// WeeklyTeamStanding is a team's record as printed on the schedule page for
// one week. Rows are snapshots and are never updated.
type WeeklyTeamStanding struct {
	ID     int64
	TeamID int64
	Year   int
	Week   string
	Record string
}
