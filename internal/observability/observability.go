package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

type stopFunc struct {
	name string
	fn   func(context.Context) error
}

// Stack holds whatever telemetry Setup turned on: Uptrace tracing,
// Pyroscope profiling and the pprof debug listener.
type Stack struct {
	logger    *logging.Logger
	stops     []stopFunc
	pprofAddr string
}

// Setup starts every enabled backend. On error anything already started is
// stopped again.
func Setup(cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Stack{logger: logger.Named("observability")}

	steps := []func(config.Config) error{s.startUptrace, s.startPyroscope, s.startPprof}
	for _, step := range steps {
		if err := step(cfg); err != nil {
			_ = s.Shutdown(context.Background())
			return nil, err
		}
	}
	return s, nil
}

// PprofAddr is the bound debug listener address, or "" when pprof is off.
func (s *Stack) PprofAddr() string { return s.pprofAddr }

// Shutdown stops backends in reverse start order.
func (s *Stack) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(s.stops) - 1; i >= 0; i-- {
		stop := s.stops[i]
		if err := stop.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", stop.name, err))
			continue
		}
		s.logger.Debug("telemetry stopped", "backend", stop.name)
	}
	s.stops = nil
	return errors.Join(errs...)
}

func (s *Stack) onStop(name string, fn func(context.Context) error) {
	s.stops = append(s.stops, stopFunc{name: name, fn: fn})
}

func (s *Stack) startUptrace(cfg config.Config) error {
	if !cfg.UptraceEnabled || strings.TrimSpace(cfg.UptraceDSN) == "" {
		s.logger.Info("uptrace disabled")
		return nil
	}
	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)
	s.onStop("uptrace", uptrace.Shutdown)
	s.logger.Info("uptrace enabled", "service_name", cfg.ServiceName, "environment", cfg.AppEnv)
	return nil
}

func (s *Stack) startPyroscope(cfg config.Config) error {
	if !cfg.PyroscopeEnabled {
		s.logger.Info("pyroscope disabled")
		return nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.PyroscopeAppName,
		ServerAddress:   cfg.PyroscopeServerAddress,
		AuthToken:       cfg.PyroscopeAuthToken,
		UploadRate:      cfg.PyroscopeUploadRate,
		Tags:            map[string]string{"env": cfg.AppEnv, "service": cfg.ServiceName},
		// The reconcile run is mostly waiting on the browser, so goroutine
		// and block profiles matter as much as CPU.
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileBlockDuration,
			pyroscope.ProfileMutexDuration,
		},
	})
	if err != nil {
		return fmt.Errorf("start pyroscope: %w", err)
	}
	s.onStop("pyroscope", func(context.Context) error { return profiler.Stop() })
	s.logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return nil
}

func (s *Stack) startPprof(cfg config.Config) error {
	if !cfg.PprofEnabled {
		s.logger.Info("pprof disabled")
		return nil
	}
	ln, err := net.Listen("tcp", cfg.PprofAddr)
	if err != nil {
		return fmt.Errorf("listen pprof: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("pprof server failed", "error", err)
		}
	}()
	s.pprofAddr = ln.Addr().String()
	s.onStop("pprof", srv.Shutdown)
	s.logger.Info("pprof server listening", "addr", s.pprofAddr)
	return nil
}
