// Command importusers bulk-registers accounts from a CSV file with the
// columns username,email,password. A header row is optional.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/nfl-pickem/internal/app"
	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	path := flag.String("csv", "", "path to the users CSV")
	flag.Parse()
	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: importusers -csv users.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load config", "error", err)
		os.Exit(1)
	}
	cfg.ReconcileEnabled = false

	logger := logging.NewConsole(cfg.LogLevel).Named("importusers")
	if err := run(context.Background(), cfg, *path, logger); err != nil {
		logger.Error("import failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(ctx context.Context, cfg config.Config, path string, logger *logging.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rows, err := readUsers(f)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	result, err := a.Imports.Import(ctx, rows)
	if err != nil {
		return err
	}
	for _, failure := range result.Failures {
		logger.Warn("row rejected", "line", failure.Line, "error", failure.Error)
	}
	logger.Info("import done", "rows", len(rows), "created", result.Created, "failed", len(result.Failures))
	return nil
}

func readUsers(r io.Reader) ([]usecase.ImportUser, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	var out []usecase.ImportUser
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "username") {
			continue
		}
		out = append(out, usecase.ImportUser{
			Line:     line,
			Username: strings.TrimSpace(record[0]),
			Email:    strings.TrimSpace(record[1]),
			Password: record[2],
		})
	}
	return out, nil
}
