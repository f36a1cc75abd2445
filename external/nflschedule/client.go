package nflschedule

import (
	"bytes"
	"context"
	"errors"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-pickem/internal/domain/schedule"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/platform/resilience"
)

type ClientConfig struct {
	Source         PageSource
	Snapshot       *SnapshotWriter
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client fetches the schedule page through a circuit breaker and extracts it.
// It satisfies usecase.ScheduleSource.
type Client struct {
	source    PageSource
	snapshot  *SnapshotWriter
	breaker   *resilience.CircuitBreaker
	extractor *Extractor
	logger    *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		source:    cfg.Source,
		snapshot:  cfg.Snapshot,
		breaker:   resilience.NewFromConfig(cfg.CircuitBreaker),
		extractor: NewExtractor(),
		logger:    logger.Named("nflschedule"),
	}
}

func (c *Client) FetchWeek(ctx context.Context) (schedule.Week, error) {
	if c.source == nil {
		return schedule.Week{}, fetchFailure(crerr.New("no schedule page source configured"))
	}

	startedAt := time.Now()
	var page []byte
	err := c.breaker.Execute(func() error {
		var fetchErr error
		page, fetchErr = c.source.Fetch(ctx)
		return fetchErr
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "schedule circuit breaker rejected fetch", "source", c.source.Name(), "state", c.breaker.State())
		}
		return schedule.Week{}, fetchFailure(crerr.Wrapf(err, "fetch schedule via %s", c.source.Name()))
	}
	c.logger.DebugContext(ctx, "schedule page fetched",
		"source", c.source.Name(),
		"bytes", len(page),
		"duration", time.Since(startedAt),
	)

	if err := c.snapshot.Write(c.source.Name(), page); err != nil {
		c.logger.WarnContext(ctx, "write schedule snapshot failed", "path", c.snapshot.Path(), "error", err)
	}

	week, err := c.extractor.Parse(bytes.NewReader(page))
	if err != nil {
		return schedule.Week{}, err
	}
	return week, nil
}
