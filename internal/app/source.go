package app

import (
	"fmt"

	"github.com/riskibarqy/nfl-pickem/external/nflschedule"
	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/platform/resilience"
)

func newScheduleClient(cfg config.Config, logger *logging.Logger) (*nflschedule.Client, error) {
	source, err := newPageSource(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("schedule source configured",
		"source", source.Name(),
		"url", cfg.ScheduleURL,
		"timezone", cfg.ScheduleTimezone,
		"snapshot_path", cfg.ScheduleSnapshotPath,
	)

	return nflschedule.NewClient(nflschedule.ClientConfig{
		Source:   source,
		Snapshot: nflschedule.NewSnapshotWriter(cfg.ScheduleSnapshotPath),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ScheduleCircuitEnabled,
			FailureThreshold: cfg.ScheduleCircuitFailureCount,
			OpenTimeout:      cfg.ScheduleCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ScheduleCircuitHalfOpenMaxReq,
		},
		Logger: logger,
	}), nil
}

func newPageSource(cfg config.Config) (nflschedule.PageSource, error) {
	switch cfg.ScheduleSource {
	case config.ScheduleSourceBrowser, "":
		return nflschedule.NewBrowserSource(nflschedule.BrowserSourceConfig{
			URL:          cfg.ScheduleURL,
			WaitSelector: cfg.ScheduleWaitSelector,
			Timezone:     cfg.ScheduleTimezone,
			Timeout:      cfg.ScheduleFetchTimeout,
			ExecPath:     cfg.ScheduleBrowserPath,
		}), nil
	case config.ScheduleSourceHTTP:
		return nflschedule.NewHTTPSource(nflschedule.HTTPSourceConfig{
			URL:     cfg.ScheduleURL,
			Timeout: cfg.ScheduleFetchTimeout,
		}), nil
	case config.ScheduleSourceFile:
		return nflschedule.NewFileSource(cfg.ScheduleFile), nil
	default:
		return nil, fmt.Errorf("unsupported schedule source %q", cfg.ScheduleSource)
	}
}
