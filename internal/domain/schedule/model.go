package schedule

import (
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinal     Status = "final"
)

// State is the closed set of game states read from the page: Scheduled,
// Live or Final.
type State interface {
	Status() Status
	isState()
}

type Scheduled struct{}

// Live carries the in-progress period text, e.g. "3rd 04:12".
type Live struct {
	Period string
}

// Final carries the period text ("FINAL", "FINAL/OT") and both scores in
// page order.
type Final struct {
	Period    string
	HomeScore int
	AwayScore int
}

func (Scheduled) Status() Status { return StatusScheduled }
func (Live) Status() Status      { return StatusLive }
func (Final) Status() Status     { return StatusFinal }

func (Scheduled) isState() {}
func (Live) isState()      {}
func (Final) isState()     {}

// Game is one matchup strip. Home is the first team listed. Kickoff holds
// the page's wall clock time; it is midnight for Live and Final games
// because the page stops printing the time once a game starts.
type Game struct {
	Home       string
	Away       string
	HomeRecord string
	AwayRecord string
	Kickoff    time.Time
	State      State
}

// Week is a whole schedule page.
type Week struct {
	Year  int
	Label string
	Games []Game
}

func (w Week) Pointer() season.Pointer {
	return season.Pointer{Year: w.Year, Week: w.Label}
}

// AllFinal reports whether the week has games and every one is Final.
func (w Week) AllFinal() bool {
	if len(w.Games) == 0 {
		return false
	}
	for _, g := range w.Games {
		if _, ok := g.State.(Final); !ok {
			return false
		}
	}
	return true
}
