package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

// Kickoffs are the schedule page's wall clock, so they are rendered
// without an offset.
const kickoffLayout = "2006-01-02T15:04:05"

type submitPicksRequest struct {
	Picks []pickItemRequest `json:"picks" validate:"required,min=1,dive"`
}

type pickItemRequest struct {
	MatchID int64 `json:"match_id" validate:"required,gt=0"`
	TeamID  int64 `json:"team_id" validate:"required,gt=0"`
}

type teamDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LogoFile string `json:"logo_file"`
}

type matchResultDTO struct {
	Score        string `json:"score"`
	WinnerTeamID *int64 `json:"winner_team_id"`
	Tie          bool   `json:"tie"`
}

type matchDTO struct {
	ID         int64           `json:"id"`
	Season     int             `json:"season"`
	Week       string          `json:"week"`
	KickoffAt  string          `json:"kickoff_at"`
	Team1      teamDTO         `json:"team1"`
	Team2      teamDTO         `json:"team2"`
	Result     *matchResultDTO `json:"result,omitempty"`
	PickTeamID *int64          `json:"pick_team_id,omitempty"`
	Locked     bool            `json:"locked"`
}

type weekDTO struct {
	Year    int        `json:"year"`
	Week    string     `json:"week"`
	Matches []matchDTO `json:"matches"`
}

type seasonPointerDTO struct {
	Year int    `json:"year"`
	Week string `json:"week"`
}

func teamToDTO(t team.Team) teamDTO {
	return teamDTO{ID: t.ID, Name: t.Name, LogoFile: t.LogoFile}
}

func pointerToDTO(p season.Pointer) seasonPointerDTO {
	return seasonPointerDTO{Year: p.Year, Week: p.Week}
}

func matchViewToDTO(v usecase.MatchView) matchDTO {
	out := matchDTO{
		ID:         v.Match.ID,
		Season:     v.Match.Season,
		Week:       v.Match.Week,
		KickoffAt:  v.Match.KickoffAt.Format(kickoffLayout),
		Team1:      teamToDTO(v.Team1),
		Team2:      teamToDTO(v.Team2),
		PickTeamID: v.PickTeamID,
		Locked:     v.Locked,
	}
	if v.Result != nil {
		out.Result = &matchResultDTO{
			Score:        v.Result.Score,
			WinnerTeamID: v.Result.WinnerTeamID,
			Tie:          v.Result.IsTie(),
		}
	}
	return out
}

func weekToDTO(p season.Pointer, views []usecase.MatchView) weekDTO {
	items := make([]matchDTO, 0, len(views))
	for _, v := range views {
		items = append(items, matchViewToDTO(v))
	}
	return weekDTO{Year: p.Year, Week: p.Week, Matches: items}
}

func (h *Handler) GetMyPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetMyPicks")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	week, err := h.pickService.CurrentWeek(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get current picks failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekToDTO(week.Pointer, week.Matches))
}

func (h *Handler) SubmitPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "SubmitPicks")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPicksRequest
	if err := decodeJSONBody(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	choices := make(map[int64]int64, len(req.Picks))
	for _, item := range req.Picks {
		if _, dup := choices[item.MatchID]; dup {
			writeError(ctx, w, fmt.Errorf("%w: match %d is picked more than once", usecase.ErrInvalidInput, item.MatchID))
			return
		}
		choices[item.MatchID] = item.TeamID
	}

	result, err := h.pickService.Submit(ctx, principal.UserID, choices)
	if err != nil {
		h.logger.WarnContext(ctx, "submit picks failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"saved": result.Saved})
}
