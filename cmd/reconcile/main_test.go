package main

import (
	"testing"

	"github.com/riskibarqy/nfl-pickem/internal/config"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.Config{ScheduleSource: config.ScheduleSourceBrowser, ReconcileEnabled: true}
	applyFlags(&cfg, "week.html", "/tmp/last.html")

	if cfg.ScheduleSource != config.ScheduleSourceFile || cfg.ScheduleFile != "week.html" {
		t.Fatalf("expected file source, got %q %q", cfg.ScheduleSource, cfg.ScheduleFile)
	}
	if cfg.ScheduleSnapshotPath != "/tmp/last.html" {
		t.Fatalf("unexpected snapshot path %q", cfg.ScheduleSnapshotPath)
	}
	if cfg.ReconcileEnabled {
		t.Fatalf("scheduler must stay off for a one-shot run")
	}
}

func TestApplyFlags_KeepsConfiguredSource(t *testing.T) {
	cfg := config.Config{ScheduleSource: config.ScheduleSourceHTTP, ScheduleSnapshotPath: "keep.html"}
	applyFlags(&cfg, "", "")

	if cfg.ScheduleSource != config.ScheduleSourceHTTP || cfg.ScheduleSnapshotPath != "keep.html" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
