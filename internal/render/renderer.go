// Package render implements the content phase: it evaluates each compiled
// content asset, renders its component to an HTML fragment, records fragments
// for the document phase, and settles the cycle's injection barrier.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/cycle"
	"git.home.luguber.info/inful/prerender/internal/fragcache"
	"git.home.luguber.info/inful/prerender/internal/host"
	"git.home.luguber.info/inful/prerender/internal/metrics"
)

// Renderer runs all content renders of one cycle concurrently and settles the
// barrier exactly once: resolved when every task succeeded, rejected with the
// first failure otherwise.
type Renderer struct {
	loader   host.ModuleLoader
	opts     *config.Options
	cache    *fragcache.Store // nil disables caching
	recorder metrics.Recorder
	markdown Markdown
}

// New constructs a renderer. cache may be nil; recorder may be nil (noop).
func New(loader host.ModuleLoader, opts *config.Options, cache *fragcache.Store, recorder metrics.Recorder) *Renderer {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Renderer{
		loader:   loader,
		opts:     opts,
		cache:    cache,
		recorder: recorder,
		markdown: NewMarkdown(),
	}
}

// ProcessAssets renders every content asset of the cycle, deletes the compiled
// assets from the output set (they never ship), and settles the barrier.
func (r *Renderer) ProcessAssets(ctx context.Context, cyc *cycle.Context, assets *host.AssetSet) error {
	snapshot := assets.Assets()

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range snapshot {
		g.Go(func() error {
			return r.renderAsset(gctx, cyc, a)
		})
	}
	err := g.Wait()

	for _, a := range snapshot {
		assets.Delete(a.Name)
	}

	if err != nil {
		cyc.Reject(err)
		return err
	}
	cyc.Resolve()
	slog.Debug("Content phase settled", "cycle", cyc.ID, "fragments", len(cyc.Fragments()))
	return nil
}

func (r *Renderer) renderAsset(ctx context.Context, cyc *cycle.Context, a host.Asset) error {
	entry := cycle.EntryName(a.Name)
	start := time.Now()
	html, err := r.fragmentFor(ctx, entry, a)
	r.recorder.ObserveRenderDuration(entry, time.Since(start), err == nil)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			r.recorder.IncRenderResult(metrics.ResultCanceled)
		} else {
			r.recorder.IncRenderResult(metrics.ResultFailure)
		}
		slog.Error("Content render failed", "cycle", cyc.ID, "entry", entry, "error", err)
		return fmt.Errorf("render %s: %w", entry, err)
	}
	r.recorder.IncRenderResult(metrics.ResultSuccess)
	cyc.SetFragment(entry, html)
	slog.Debug("Rendered content fragment", "cycle", cyc.ID, "entry", entry, "bytes", len(html))
	return nil
}

// fragmentFor produces the fragment for one content asset, consulting the
// cache first. Markdown assets render directly; everything else is evaluated
// as an executable module.
func (r *Renderer) fragmentFor(ctx context.Context, entry string, a host.Asset) (string, error) {
	var sig string
	if r.cache != nil {
		sig = fragcache.Signature(a.Data)
		if html, ok, err := r.cache.Get(ctx, entry, sig); err != nil {
			return "", err
		} else if ok {
			r.recorder.IncCacheHit()
			return html, nil
		}
		r.recorder.IncCacheMiss()
	}

	var html string
	var err error
	if strings.HasSuffix(strings.ToLower(a.Name), ".md") {
		html, err = r.markdown.Render(a.Data)
	} else {
		html, err = r.renderModule(ctx, entry, a)
	}
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, entry, sig, html); err != nil {
			return "", err
		}
	}
	return html, nil
}

func (r *Renderer) renderModule(ctx context.Context, entry string, a host.Asset) (string, error) {
	mod, err := r.loader.Load(ctx, a.Name, a.Data)
	if err != nil {
		return "", err
	}
	app, err := mod.NewApp()
	if err != nil {
		return "", err
	}
	if r.opts != nil && r.opts.ConfigureApp != nil {
		if err := r.opts.ConfigureApp(app, entry); err != nil {
			return "", fmt.Errorf("configure app: %w", err)
		}
	}
	return app.RenderToString(ctx)
}
