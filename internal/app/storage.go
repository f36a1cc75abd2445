package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
	"github.com/riskibarqy/nfl-pickem/internal/domain/store"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// storage is the persistence backend picked by DB_URL.
type storage struct {
	uow   store.UnitOfWork
	repos store.Repositories
	runs  jobrun.Repository
	close func() error
}

func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	if cfg.DBURL == "" {
		logger.Warn("DB_URL is empty, using in-memory repositories")
		mem := memory.NewStore(nil)
		return storage{
			uow:   mem,
			repos: mem.Repositories(),
			runs:  memory.NewJobRunRepository(),
			close: func() error { return nil },
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return storage{}, err
	}
	logger.Info("postgres connected", "db_name", postgresDSN(cfg.DBURL).databaseName())
	return storage{
		uow:   postgres.NewUnitOfWork(db),
		repos: postgres.Repositories(db),
		runs:  postgres.NewJobRunRepository(db),
		close: db.Close,
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := postgresDSN(cfg.DBURL)
	db, err := otelsqlx.Open("postgres", dsn.withApplicationName(cfg.ServiceName),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dsn.databaseName()),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// postgresDSN is DB_URL in either URL or key=value form.
type postgresDSN string

// withApplicationName sets fallback_application_name on URL style DSNs so
// connections show up by service in pg_stat_activity. An explicit name in
// the DSN wins. key=value DSNs are returned unchanged.
func (d postgresDSN) withApplicationName(name string) string {
	raw := string(d)
	name = strings.TrimSpace(name)
	u, err := url.Parse(raw)
	if name == "" || err != nil || u.Scheme == "" {
		return raw
	}
	q := u.Query()
	if q.Has("application_name") || q.Has("fallback_application_name") {
		return raw
	}
	q.Set("fallback_application_name", name)
	u.RawQuery = q.Encode()
	return u.String()
}

func (d postgresDSN) databaseName() string {
	raw := strings.TrimSpace(string(d))
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		return strings.Trim(u.Path, "/ ")
	}
	for _, field := range strings.Fields(raw) {
		if key, value, ok := strings.Cut(field, "="); ok && key == "dbname" {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

const maxTracedQueryBytes = 512

// traceQuery collapses whitespace so multi-line statements read as one span
// attribute, and caps the length.
func traceQuery(query string) string {
	q := strings.Join(strings.Fields(query), " ")
	if len(q) <= maxTracedQueryBytes {
		return q
	}
	cut := maxTracedQueryBytes
	for cut > 0 && !utf8.RuneStart(q[cut]) {
		cut--
	}
	return q[:cut] + "..."
}
