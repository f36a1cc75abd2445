// Command reconcile runs a single schedule reconcile and prints the run.
// With -file it replays a saved page instead of fetching the live one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/nfl-pickem/internal/app"
	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "", "reconcile from a saved schedule page instead of the configured source")
	dump := flag.String("dump", "", "write the fetched page to this path")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load config", "error", err)
		os.Exit(1)
	}
	applyFlags(&cfg, *file, *dump)

	logger := logging.NewConsole(cfg.LogLevel).Named("reconcile")
	logging.SetDefault(logger)

	run, err := reconcileOnce(cfg, logger)
	if err != nil {
		logger.Error("reconcile failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	out, err := sonic.ConfigStd.MarshalIndent(run, "", "  ")
	if err == nil {
		fmt.Println(string(out))
	}
	_ = logger.Sync()
	if run.Status != jobrun.StatusSucceeded {
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, file, dump string) {
	if file != "" {
		cfg.ScheduleSource = config.ScheduleSourceFile
		cfg.ScheduleFile = file
	}
	if dump != "" {
		cfg.ScheduleSnapshotPath = dump
	}
	cfg.ReconcileEnabled = false
}

func reconcileOnce(cfg config.Config, logger *logging.Logger) (jobrun.Run, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.ReconcileRunTimeout)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return jobrun.Run{}, err
	}
	defer func() { _ = a.Close() }()

	return a.RunReconcile(ctx)
}
