package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/riskibarqy/nfl-pickem/internal/domain/match"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

const (
	ScheduleSourceBrowser = "browser"
	ScheduleSourceHTTP    = "http"
	ScheduleSourceFile    = "file"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv          string
	ServiceName     string
	ServiceVersion  string
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LogLevel        logging.Level

	// DBURL empty runs the service on in-memory repositories.
	DBURL          string
	DBMaxOpenConns int
	DBMaxIdleConns int

	CORSAllowedOrigins []string
	InternalJobToken   string
	SwaggerEnabled     bool

	ScheduleSource                string
	ScheduleURL                   string
	ScheduleFile                  string
	ScheduleTimezone              string
	ScheduleLocation              *time.Location
	ScheduleFetchTimeout          time.Duration
	ScheduleWaitSelector          string
	ScheduleBrowserPath           string
	ScheduleSnapshotPath          string
	ScheduleCircuitEnabled        bool
	ScheduleCircuitFailureCount   int
	ScheduleCircuitOpenTimeout    time.Duration
	ScheduleCircuitHalfOpenMaxReq int

	ReconcileEnabled    bool
	ReconcileSchedule   string
	ReconcileRunOnStart bool
	ReconcileRunTimeout time.Duration
	ReconcileTiePolicy  match.TiePolicy

	AuthSessionTTL  time.Duration
	AuthBcryptCost  int
	CacheEnabled    bool
	CacheTTL        time.Duration
	TeamSeedEnabled bool

	UptraceEnabled         bool
	UptraceDSN             string
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
	PprofEnabled           bool
	PprofAddr              string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:               appEnv,
		ServiceName:          getEnv("APP_SERVICE_NAME", "nfl-pickem-api"),
		ServiceVersion:       getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:             getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:             logging.ParseLevel(strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_LEVEL", "info")))),
		DBURL:                strings.TrimSpace(os.Getenv("DB_URL")),
		CORSAllowedOrigins:   splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:     strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		ScheduleURL:          strings.TrimSpace(getEnv("SCHEDULE_URL", "https://www.nfl.com/schedules/")),
		ScheduleFile:         strings.TrimSpace(getEnv("SCHEDULE_FILE", "")),
		ScheduleTimezone:     strings.TrimSpace(getEnv("SCHEDULE_TIMEZONE", "America/New_York")),
		ScheduleWaitSelector: strings.TrimSpace(getEnv("SCHEDULE_WAIT_SELECTOR", "")),
		ScheduleBrowserPath:  strings.TrimSpace(getEnv("SCHEDULE_BROWSER_PATH", "")),
		ScheduleSnapshotPath: strings.TrimSpace(getEnv("SCHEDULE_SNAPSHOT_PATH", "")),
		ReconcileSchedule:    strings.TrimSpace(getEnv("RECONCILE_SCHEDULE", "@every 6h")),
		UptraceDSN:           strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeAuthToken:   strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.SwaggerEnabled, err = getEnvAsBool("SWAGGER_ENABLED", appEnv != EnvProd); err != nil {
		return Config{}, err
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", "20s"); err != nil {
		return Config{}, err
	}

	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxIdleConns, err = getEnvAsInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if cfg.DBMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}
	if cfg.DBMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("DB_MAX_IDLE_CONNS must be >= 0")
	}

	if err := loadSchedule(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadReconcile(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.AuthSessionTTL, err = getEnvAsDuration("AUTH_SESSION_TTL", "168h"); err != nil {
		return Config{}, err
	}
	if cfg.AuthBcryptCost, err = getEnvAsInt("AUTH_BCRYPT_COST", 10); err != nil {
		return Config{}, fmt.Errorf("parse AUTH_BCRYPT_COST: %w", err)
	}
	if cfg.AuthBcryptCost < 4 || cfg.AuthBcryptCost > 31 {
		return Config{}, fmt.Errorf("AUTH_BCRYPT_COST must be between 4 and 31")
	}
	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", "60s"); err != nil {
		return Config{}, err
	}
	if cfg.TeamSeedEnabled, err = getEnvAsBool("TEAM_SEED_ENABLED", true); err != nil {
		return Config{}, err
	}

	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadSchedule(cfg *Config) error {
	source := strings.ToLower(strings.TrimSpace(getEnv("SCHEDULE_SOURCE", ScheduleSourceBrowser)))
	switch source {
	case ScheduleSourceBrowser, ScheduleSourceHTTP:
		if cfg.ScheduleURL == "" {
			return fmt.Errorf("SCHEDULE_URL is required when SCHEDULE_SOURCE=%s", source)
		}
	case ScheduleSourceFile:
		if cfg.ScheduleFile == "" {
			return fmt.Errorf("SCHEDULE_FILE is required when SCHEDULE_SOURCE=file")
		}
	default:
		return fmt.Errorf("invalid SCHEDULE_SOURCE %q: valid values are %s, %s, %s",
			source, ScheduleSourceBrowser, ScheduleSourceHTTP, ScheduleSourceFile)
	}
	cfg.ScheduleSource = source

	location, err := time.LoadLocation(cfg.ScheduleTimezone)
	if err != nil {
		return fmt.Errorf("parse SCHEDULE_TIMEZONE: %w", err)
	}
	cfg.ScheduleLocation = location

	if cfg.ScheduleFetchTimeout, err = getEnvAsDuration("SCHEDULE_FETCH_TIMEOUT", "60s"); err != nil {
		return err
	}
	if cfg.ScheduleCircuitEnabled, err = getEnvAsBool("SCHEDULE_CIRCUIT_ENABLED", true); err != nil {
		return err
	}
	if cfg.ScheduleCircuitFailureCount, err = getEnvAsInt("SCHEDULE_CIRCUIT_FAILURE_COUNT", 3); err != nil {
		return fmt.Errorf("parse SCHEDULE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.ScheduleCircuitFailureCount < 1 {
		return fmt.Errorf("SCHEDULE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.ScheduleCircuitOpenTimeout, err = getEnvAsDuration("SCHEDULE_CIRCUIT_OPEN_TIMEOUT", "30m"); err != nil {
		return err
	}
	if cfg.ScheduleCircuitHalfOpenMaxReq, err = getEnvAsInt("SCHEDULE_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return fmt.Errorf("parse SCHEDULE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.ScheduleCircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("SCHEDULE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	return nil
}

func loadReconcile(cfg *Config) error {
	var err error
	if cfg.ReconcileEnabled, err = getEnvAsBool("RECONCILE_ENABLED", true); err != nil {
		return err
	}
	if cfg.ReconcileRunOnStart, err = getEnvAsBool("RECONCILE_RUN_ON_START", false); err != nil {
		return err
	}
	if cfg.ReconcileRunTimeout, err = getEnvAsDuration("RECONCILE_RUN_TIMEOUT", "5m"); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(cfg.ReconcileSchedule); err != nil {
		return fmt.Errorf("parse RECONCILE_SCHEDULE: %w", err)
	}
	if cfg.ReconcileTiePolicy, err = match.ParseTiePolicy(getEnv("RECONCILE_TIE_POLICY", string(match.TiePolicyNull))); err != nil {
		return fmt.Errorf("parse RECONCILE_TIE_POLICY: %w", err)
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return err
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

// getEnvAsDuration rejects zero and negative durations.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
