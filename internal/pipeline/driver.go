package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/host"
	"git.home.luguber.info/inful/prerender/internal/verify"
)

// contentFileExtensions are the bundle types the driver treats as content
// entries when none are configured explicitly.
var contentFileExtensions = map[string]bool{
	".js": true, ".mjs": true, ".cjs": true, ".md": true,
}

// Report summarizes one completed build cycle.
type Report struct {
	Cycle     string
	Fragments int
	Documents int
	Duration  time.Duration
	Issues    []verify.Issue
}

// Driver is a minimal host for the CLI: it presents precompiled content
// bundles and client-built documents from the local filesystem as build assets
// and runs both phases of one cycle. It performs no bundling; content bundles
// are produced by the real bundler out of band.
type Driver struct {
	cfg    *config.FileConfig
	plugin *Plugin
	build  *config.Build
}

// NewDriver constructs a driver and applies the environment splitter to a
// build specification derived from the file configuration.
func NewDriver(cfg *config.FileConfig, plugin *Plugin) (*Driver, error) {
	entries := cfg.ContentEntries
	if len(entries) == 0 {
		discovered, err := discoverContentEntries(cfg.ContentDir)
		if err != nil {
			return nil, err
		}
		entries = discovered
	}
	plugin.opts.Entries = entries

	build := &config.Build{
		Title:     cfg.Title,
		OutputDir: cfg.OutputDir,
	}
	if err := plugin.Apply(build); err != nil {
		return nil, err
	}
	return &Driver{cfg: cfg, plugin: plugin, build: build}, nil
}

// Build returns the split build specification.
func (d *Driver) Build() *config.Build { return d.build }

// RunCycle executes one full build cycle: both phases run concurrently, the
// barrier orders them, and the injected documents are written to the output
// directory. Content-environment output never reaches the output directory.
func (d *Driver) RunCycle(ctx context.Context) (*Report, error) {
	start := time.Now()

	contentAssets, err := d.loadContentAssets()
	if err != nil {
		return nil, err
	}
	docAssets, err := d.loadDocumentAssets()
	if err != nil {
		return nil, err
	}

	d.plugin.BeforeEnvironment(host.EnvContent)
	cyc := d.plugin.currentCycle()

	// The host build tool may schedule the two compilations in any
	// interleaving; the barrier, not scheduling order, enforces correctness.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.plugin.ProcessAssets(gctx, host.EnvContent, contentAssets)
	})
	g.Go(func() error {
		return d.plugin.ProcessAssets(gctx, host.EnvDocument, docAssets)
	})
	err = g.Wait()

	duration := time.Since(start)
	d.plugin.recorder.ObserveCycleDuration(duration)
	if err != nil {
		d.plugin.recorder.IncCycleOutcome("failed")
		return nil, err
	}

	if err := d.writeOutput(docAssets); err != nil {
		d.plugin.recorder.IncCycleOutcome("failed")
		return nil, err
	}
	d.plugin.recorder.IncCycleOutcome("success")

	report := &Report{
		Cycle:     cyc.ID,
		Fragments: len(cyc.Fragments()),
		Documents: docAssets.Len(),
		Duration:  duration,
	}
	if d.cfg.Verify {
		report.Issues = d.verifyOutput(docAssets)
	}
	slog.Info("Build cycle complete",
		"cycle", report.Cycle,
		"fragments", report.Fragments,
		"documents", report.Documents,
		"duration", report.Duration,
		"issues", len(report.Issues))
	return report, nil
}

func (d *Driver) loadContentAssets() (*host.AssetSet, error) {
	set := host.NewAssetSet()
	env := d.build.ContentEnv()
	for entry, file := range env.Entries {
		data, err := os.ReadFile(filepath.Join(d.cfg.ContentDir, filepath.Clean(file)))
		if err != nil {
			return nil, fmt.Errorf("read content bundle for entry %s: %w", entry, err)
		}
		// The asset carries the configured entry name, not the bundle's file
		// name, so fragments key to the documents that look them up.
		set.Add(entry+path.Ext(file), data)
	}
	return set, nil
}

func (d *Driver) loadDocumentAssets() (*host.AssetSet, error) {
	set := host.NewAssetSet()
	root := d.cfg.DocumentsDir
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		set.Add(filepath.ToSlash(rel), data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return set, nil
}

func (d *Driver) writeOutput(assets *host.AssetSet) error {
	outDir := d.build.DocumentEnv().OutputDir
	for _, a := range assets.Assets() {
		dest := filepath.Join(outDir, filepath.FromSlash(a.Name))
		if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if err := os.WriteFile(dest, a.Data, 0o600); err != nil {
			return fmt.Errorf("write output %s: %w", a.Name, err)
		}
	}
	return nil
}

func (d *Driver) verifyOutput(assets *host.AssetSet) []verify.Issue {
	var issues []verify.Issue
	for _, a := range assets.Assets() {
		if !strings.HasSuffix(strings.ToLower(a.Name), ".html") &&
			!strings.HasSuffix(strings.ToLower(a.Name), ".htm") {
			continue
		}
		for _, issue := range verify.Document(a.Name, a.Data, d.cfg.Placeholder) {
			slog.Warn("Output verification issue", "document", issue.Document, "kind", issue.Kind, "detail", issue.Detail)
			issues = append(issues, issue)
		}
	}
	return issues
}

// discoverContentEntries maps every code file at the top of dir to an entry.
func discoverContentEntries(dir string) (map[string]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discover content entries: %w", err)
	}
	entries := make(map[string]string)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if !contentFileExtensions[ext] {
			continue
		}
		entries[strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))] = f.Name()
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("discover content entries: no content bundles in %s", dir)
	}
	return entries, nil
}
