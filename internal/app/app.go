package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/jobqueue"
	repocache "github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/nfl-pickem/internal/interfaces/httpapi"
	"github.com/riskibarqy/nfl-pickem/internal/platform/cache"
	idgen "github.com/riskibarqy/nfl-pickem/internal/platform/id"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/platform/password"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

const sessionPurgeSpec = "@every 10m"

// App holds the wired services shared by the api, reconcile and import
// commands.
type App struct {
	cfg       config.Config
	logger    *logging.Logger
	storage   storage
	server    *http.Server
	scheduler *jobqueue.CronScheduler

	Auth      *usecase.AuthService
	Picks     *usecase.PickService
	Standings *usecase.StandingsService
	Catalog   *usecase.CatalogService
	Reconcile *usecase.ReconcileService
	Jobs      *usecase.JobOrchestratorService
	Imports   *usecase.UserImportService
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	zone := cfg.ScheduleLocation
	if zone == nil {
		zone = time.UTC
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logger, storage: st}
	if err := a.wire(ctx, zone); err != nil {
		_ = st.close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, zone *time.Location) error {
	cfg, logger := a.cfg, a.logger

	repos := a.storage.repos
	var readCache usecase.ReadCache
	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL)
		readCache = store
		repos.Teams = repocache.NewTeamRepository(repos.Teams, store)
	}
	sessions := cache.NewStore(cfg.AuthSessionTTL)
	ids := idgen.NewRandomGenerator()

	state := usecase.NewSeasonState()
	if err := state.Init(ctx, repos.Seasons); err != nil {
		return fmt.Errorf("load season pointer: %w", err)
	}

	a.Catalog = usecase.NewCatalogService(repos, state, zone, logger)
	if cfg.TeamSeedEnabled {
		if _, err := a.Catalog.SeedTeams(ctx); err != nil {
			return err
		}
	}

	a.Auth = usecase.NewAuthService(
		repos.Users,
		password.NewHasher(cfg.AuthBcryptCost),
		ids,
		sessions,
		usecase.AuthConfig{SessionTTL: cfg.AuthSessionTTL},
		logger,
	)
	a.Picks = usecase.NewPickService(a.storage.uow, repos, state, zone, logger)
	a.Standings = usecase.NewStandingsService(repos, state, readCache)
	a.Imports = usecase.NewUserImportService(a.Auth, runtime.NumCPU(), logger)

	client, err := newScheduleClient(cfg, logger)
	if err != nil {
		return err
	}
	a.Reconcile = usecase.NewReconcileService(
		client,
		a.storage.uow,
		usecase.NewRecordRoller(logger),
		state,
		usecase.ReconcileConfig{TiePolicy: cfg.ReconcileTiePolicy},
		logger,
	)
	a.Jobs = usecase.NewJobOrchestratorService(a.Reconcile, a.storage.runs, ids, logger)
	a.Jobs.OnSuccess(a.Standings.InvalidateCache)

	if cfg.ReconcileEnabled {
		scheduler, err := jobqueue.NewCronScheduler(a.Jobs, jobqueue.CronSchedulerConfig{
			Spec:       cfg.ReconcileSchedule,
			RunOnStart: cfg.ReconcileRunOnStart,
			RunTimeout: cfg.ReconcileRunTimeout,
			Location:   zone,
			PurgeSpec:  sessionPurgeSpec,
			Purger:     sessions,
		}, logger)
		if err != nil {
			return fmt.Errorf("create reconcile scheduler: %w", err)
		}
		a.scheduler = scheduler
	}

	handler := httpapi.NewHandler(a.Auth, a.Picks, a.Standings, a.Catalog, a.Jobs, logger)
	router := httpapi.NewRouter(handler, a.Auth, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken, cfg.SwaggerEnabled)
	a.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return nil
}

// Handler exposes the router, mostly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Serve starts the scheduler and blocks on the HTTP listener until Shutdown.
func (a *App) Serve() error {
	if a.scheduler != nil {
		a.scheduler.Start()
		a.logger.Info("reconcile scheduler started",
			"spec", a.cfg.ReconcileSchedule,
			"next_run", a.scheduler.NextRun(),
		)
	}
	a.logger.Info("http server started", "addr", a.server.Addr)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// RunReconcile runs one reconcile outside the scheduler.
func (a *App) RunReconcile(ctx context.Context) (jobrun.Run, error) {
	return a.Jobs.RunReconcile(ctx, jobrun.TriggerCLI)
}

// Shutdown stops the scheduler, drains the HTTP server and closes storage.
// In-flight reconcile runs finish or roll back before storage closes.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.scheduler != nil {
		if err := a.scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
	}
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.storage.close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

// Close releases storage for commands that never start serving.
func (a *App) Close() error {
	return a.storage.close()
}
