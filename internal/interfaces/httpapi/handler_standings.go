package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/record"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

type tallyDTO struct {
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Ties   int    `json:"ties"`
	Record string `json:"record"`
}

type leaderboardEntryDTO struct {
	Rank     int      `json:"rank"`
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Week     string   `json:"week"`
	Tally    tallyDTO `json:"tally"`
}

type leaderboardDTO struct {
	Year    int                   `json:"year"`
	Week    string                `json:"week,omitempty"`
	Entries []leaderboardEntryDTO `json:"entries"`
}

type teamStandingDTO struct {
	Team  teamDTO  `json:"team"`
	Tally tallyDTO `json:"tally"`
}

type teamStandingsDTO struct {
	Year  int               `json:"year"`
	Week  string            `json:"week"`
	Teams []teamStandingDTO `json:"teams"`
}

type weeklyRecordDTO struct {
	Year      int       `json:"year"`
	Week      string    `json:"week"`
	Tally     tallyDTO  `json:"tally"`
	CreatedAt time.Time `json:"created_at"`
}

func tallyToDTO(t record.Tally) tallyDTO {
	return tallyDTO{Wins: t.Wins, Losses: t.Losses, Ties: t.Ties, Record: t.String()}
}

func leaderboardToDTO(board usecase.Leaderboard) leaderboardDTO {
	entries := make([]leaderboardEntryDTO, 0, len(board.Entries))
	for _, e := range board.Entries {
		entries = append(entries, leaderboardEntryDTO{
			Rank:     e.Rank,
			UserID:   e.UserID,
			Username: e.Username,
			Week:     e.Week,
			Tally:    tallyToDTO(e.Tally),
		})
	}
	return leaderboardDTO{Year: board.Year, Week: board.Week, Entries: entries}
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetLeaderboard")
	defer span.End()

	year, week, err := parseYearAndWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.standingsService.Leaderboard(ctx, year, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "year", year, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(board))
}

func (h *Handler) GetTeamStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetTeamStandings")
	defer span.End()

	year, week, err := parseYearAndWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	standings, err := h.standingsService.TeamStandings(ctx, year, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get team standings failed", "year", year, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamStandingDTO, 0, len(standings.Teams))
	for _, row := range standings.Teams {
		items = append(items, teamStandingDTO{Team: teamToDTO(row.Team), Tally: tallyToDTO(row.Tally)})
	}
	writeSuccess(ctx, w, http.StatusOK, teamStandingsDTO{Year: standings.Year, Week: standings.Week, Teams: items})
}

func (h *Handler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetMyHistory")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	year, _, err := parseYearAndWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.standingsService.UserHistory(ctx, principal.UserID, year)
	if err != nil {
		h.logger.WarnContext(ctx, "get record history failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]weeklyRecordDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, weeklyRecordDTO{
			Year:      row.Year,
			Week:      row.Week,
			Tally:     tallyToDTO(row.Tally),
			CreatedAt: row.CreatedAt,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
