package match

import (
	"fmt"
	"strings"
	"time"
)

// Match is one scheduled game. Team1 is the first team listed on the
// schedule page. Season is the season year the week belongs to, which for
// January games differs from the kickoff's calendar year.
type Match struct {
	ID        int64
	Team1ID   int64
	Team2ID   int64
	KickoffAt time.Time
	Season    int
	Week      string
}

func (m Match) HasTeam(teamID int64) bool {
	return teamID == m.Team1ID || teamID == m.Team2ID
}

// Result is the winner record of a finished match. A nil winner is a tie.
type Result struct {
	ID           int64
	MatchID      int64
	Score        string
	WinnerTeamID *int64
}

func (r Result) IsTie() bool {
	return r.WinnerTeamID == nil
}

func FormatScore(team1, team2 int) string {
	return fmt.Sprintf("%d-%d", team1, team2)
}

// TiePolicy decides the stored winner of a drawn game.
type TiePolicy string

const (
	// TiePolicyNull stores no winner, so every pick on the match counts as a tie.
	TiePolicyNull  TiePolicy = "null"
	// TiePolicyTeam1 credits the first listed team, as an older scoring rule did.
	TiePolicyTeam1 TiePolicy = "team1"
)

func ParseTiePolicy(raw string) (TiePolicy, error) {
	switch TiePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TiePolicyNull:
		return TiePolicyNull, nil
	case TiePolicyTeam1:
		return TiePolicyTeam1, nil
	default:
		return "", fmt.Errorf("invalid tie policy %q: valid values are %s, %s", raw, TiePolicyNull, TiePolicyTeam1)
	}
}

// Decide builds the result for a final score. Scores compare as integers.
func Decide(m Match, team1Score, team2Score int, policy TiePolicy) Result {
	result := Result{
		MatchID: m.ID,
		Score:   FormatScore(team1Score, team2Score),
	}

	var winner int64
	switch {
	case team1Score > team2Score:
		winner = m.Team1ID
	case team2Score > team1Score:
		winner = m.Team2ID
	case policy == TiePolicyTeam1:
		winner = m.Team1ID
	default:
		return result
	}
	result.WinnerTeamID = &winner
	return result
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
