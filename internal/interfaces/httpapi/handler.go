package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

type Handler struct {
	authService      *usecase.AuthService
	pickService      *usecase.PickService
	standingsService *usecase.StandingsService
	catalogService   *usecase.CatalogService
	jobService       *usecase.JobOrchestratorService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	authService *usecase.AuthService,
	pickService *usecase.PickService,
	standingsService *usecase.StandingsService,
	catalogService *usecase.CatalogService,
	jobService *usecase.JobOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		authService:      authService,
		pickService:      pickService,
		standingsService: standingsService,
		catalogService:   catalogService,
		jobService:       jobService,
		logger:           logger.Named("httpapi"),
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeJSONBody(body io.Reader, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// parseYearAndWeek reads the optional ?year=&week= pair. Zero values mean
// the current season.
func parseYearAndWeek(r *http.Request) (int, string, error) {
	week := strings.TrimSpace(r.URL.Query().Get("week"))
	rawYear := strings.TrimSpace(r.URL.Query().Get("year"))
	if rawYear == "" {
		return 0, week, nil
	}
	year, err := parsePositiveInt(rawYear, "year")
	if err != nil {
		return 0, "", err
	}
	return year, week, nil
}

func parsePositiveInt(raw, name string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

