// Package inject implements the document phase: each HTML document asset is
// minified, gated on the cycle's injection barrier, spliced with its rendered
// fragment, post-processed, and replaced in the output set.
package inject

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/cycle"
	"git.home.luguber.info/inful/prerender/internal/host"
	"git.home.luguber.info/inful/prerender/internal/metrics"
)

var htmlAssetRe = regexp.MustCompile(`(?i)\.html?$`)

// Injector processes every document asset of a cycle concurrently. Minification
// happens strictly before injection: injected fragments must survive intact and
// must not be re-minified.
type Injector struct {
	opts     *config.Options
	minifier Minifier
	recorder metrics.Recorder
}

// New constructs an injector. minifier may be nil (default HTML minifier);
// recorder may be nil (noop).
func New(opts *config.Options, minifier Minifier, recorder metrics.Recorder) *Injector {
	if minifier == nil {
		minifier = HTMLMinifier{}
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if opts == nil {
		opts = &config.Options{}
	}
	return &Injector{opts: opts, minifier: minifier, recorder: recorder}
}

// ProcessAssets rewrites every HTML document asset in place. Non-HTML assets
// pass through untouched. The phase fails on the first asset failure, including
// a rejected barrier.
func (i *Injector) ProcessAssets(ctx context.Context, cyc *cycle.Context, assets *host.AssetSet) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range assets.Assets() {
		if !htmlAssetRe.MatchString(a.Name) {
			continue
		}
		g.Go(func() error {
			return i.injectDocument(gctx, cyc, assets, a)
		})
	}
	return g.Wait()
}

func (i *Injector) injectDocument(ctx context.Context, cyc *cycle.Context, assets *host.AssetSet, a host.Asset) error {
	start := time.Now()
	err := i.processOne(ctx, cyc, assets, a)
	i.recorder.ObserveInjectDuration(a.Name, time.Since(start), err == nil)
	switch {
	case err == nil:
		i.recorder.IncInjectResult(metrics.ResultSuccess)
	case errors.Is(err, context.Canceled):
		i.recorder.IncInjectResult(metrics.ResultCanceled)
	default:
		i.recorder.IncInjectResult(metrics.ResultFailure)
	}
	return err
}

func (i *Injector) processOne(ctx context.Context, cyc *cycle.Context, assets *host.AssetSet, a host.Asset) error {
	html := string(a.Data)

	if i.opts.MinifyEnabled() {
		minified, err := i.minifier.Minify(html, i.opts.EffectiveMinifyOptions())
		if err != nil {
			return fmt.Errorf("minify %s: %w", a.Name, err)
		}
		html = minified
	}
	html = EnsureScriptTerminators(html)

	// Rendezvous with the content phase. A rejected barrier fails this asset
	// and, through the group, the whole document phase for the cycle.
	if err := cyc.Wait(ctx); err != nil {
		return fmt.Errorf("inject %s: content phase failed: %w", a.Name, err)
	}

	entry := cycle.EntryName(a.Name)
	if fragment, ok := cyc.Fragment(entry); ok {
		html = strings.Replace(html, i.opts.EffectivePlaceholder(), fragment, 1)
		slog.Debug("Injected fragment", "cycle", cyc.ID, "asset", a.Name, "entry", entry)
	}

	if i.opts.PostProcess != nil {
		processed, err := i.opts.PostProcess(html, entry)
		if err != nil {
			return fmt.Errorf("post-process %s: %w", a.Name, err)
		}
		html = processed
	}

	assets.Replace(a.Name, []byte(html))
	return nil
}
