package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/metrics"
	"git.home.luguber.info/inful/prerender/internal/pipeline"
	"git.home.luguber.info/inful/prerender/internal/verify"
	"git.home.luguber.info/inful/prerender/internal/watch"
)

func newDriver(cfg *config.FileConfig) (*pipeline.Driver, *pipeline.Plugin, error) {
	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())
	plugin, err := pipeline.NewPlugin(cfg.Options(), pipeline.Deps{Recorder: recorder})
	if err != nil {
		return nil, nil, err
	}
	driver, err := pipeline.NewDriver(cfg, plugin)
	if err != nil {
		_ = plugin.Close()
		return nil, nil, err
	}
	return driver, plugin, nil
}

func runBuild(ctx context.Context, cfg *config.FileConfig) error {
	driver, plugin, err := newDriver(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = plugin.Close() }()

	report, err := driver.RunCycle(ctx)
	if err != nil {
		return err
	}
	// Verification findings are diagnostics, not build failures; the verify
	// command is the strict gate.
	if len(report.Issues) > 0 {
		slog.Warn("Build completed with verification issues", "issues", len(report.Issues))
	}
	return nil
}

func runWatch(ctx context.Context, cfg *config.FileConfig, debounce time.Duration) error {
	driver, plugin, err := newDriver(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = plugin.Close() }()

	// Initial cycle before entering the loop; a failure here is not fatal,
	// the next change retriggers.
	if _, err := driver.RunCycle(ctx); err != nil {
		slog.Error("Initial build failed", "error", err)
	}

	w, err := watch.New([]string{cfg.ContentDir, cfg.DocumentsDir}, debounce)
	if err != nil {
		return err
	}
	err = w.Run(ctx, func(ctx context.Context) error {
		_, err := driver.RunCycle(ctx)
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(config.Sample()), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("Configuration created", "path", path)
	return nil
}

func runVerify(dir, placeholder string) (int, error) {
	total := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".html") && !strings.HasSuffix(name, ".htm") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		for _, issue := range verify.Document(filepath.ToSlash(rel), data, placeholder) {
			slog.Warn("Verification issue", "document", issue.Document, "kind", issue.Kind, "detail", issue.Detail)
			total++
		}
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("verify %s: %w", dir, err)
	}
	if total == 0 {
		slog.Info("All documents verified", "dir", dir)
	} else {
		slog.Warn("Verification found issues", "dir", dir, "issues", total)
	}
	return total, nil
}
