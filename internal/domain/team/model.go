package team

import "strings"

// Team is static reference data: one row per franchise, keyed by the
// nickname the schedule page prints ("Chiefs", "Chargers").
type Team struct {
	ID       int64
	Name     string
	LogoFile string
}

// LogoFileFor derives the logo asset name used by the seed.
func LogoFileFor(name string) string {
	return strings.TrimSpace(name) + ".png"
}

// DefaultNames is the seed list for an empty teams table.
func DefaultNames() []string {
	return []string{
		"49ers", "Bears", "Bengals", "Bills", "Broncos", "Browns", "Buccaneers", "Cardinals",
		"Chargers", "Chiefs", "Colts", "Commanders", "Cowboys", "Dolphins", "Eagles", "Falcons",
		"Giants", "Jaguars", "Jets", "Lions", "Packers", "Panthers", "Patriots", "Raiders",
		"Rams", "Ravens", "Saints", "Seahawks", "Steelers", "Texans", "Titans", "Vikings",
	}
}

// Defaults returns DefaultNames as unsaved teams.
func Defaults() []Team {
	names := DefaultNames()
	out := make([]Team, 0, len(names))
	for _, name := range names {
		out = append(out, Team{Name: name, LogoFile: LogoFileFor(name)})
	}
	return out
}
