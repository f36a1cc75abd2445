package httpapi

import (
	"net/http"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListTeams")
	defer span.End()

	teams, err := h.catalogService.Teams(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetCurrentSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetCurrentSeason")
	defer span.End()

	pointer, err := h.catalogService.Current()
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, pointerToDTO(pointer))
}

func (h *Handler) ListSeasonYears(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListSeasonYears")
	defer span.End()

	years, err := h.catalogService.Years(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list season years failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	if years == nil {
		years = []int{}
	}
	writeSuccess(ctx, w, http.StatusOK, years)
}

func (h *Handler) ListSeasonWeeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListSeasonWeeks")
	defer span.End()

	year, err := parsePositiveInt(r.PathValue("year"), "year")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	weeks, err := h.catalogService.Weeks(ctx, year)
	if err != nil {
		h.logger.WarnContext(ctx, "list season weeks failed", "year", year, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, weeks)
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListMatches")
	defer span.End()

	year, week, err := parseYearAndWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	pointer, views, err := h.catalogService.Matches(ctx, year, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "year", year, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, weekToDTO(pointer, views))
}
