// Package pipeline wires the content and document phases into the host build
// tool's hook points and provides the local build driver used by the CLI.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/cycle"
	"git.home.luguber.info/inful/prerender/internal/envsplit"
	"git.home.luguber.info/inful/prerender/internal/fragcache"
	"git.home.luguber.info/inful/prerender/internal/host"
	"git.home.luguber.info/inful/prerender/internal/inject"
	"git.home.luguber.info/inful/prerender/internal/jsmodule"
	"git.home.luguber.info/inful/prerender/internal/metrics"
	"git.home.luguber.info/inful/prerender/internal/render"
)

// Deps are the collaborator implementations a Plugin orchestrates. Zero values
// select production defaults.
type Deps struct {
	Loader   host.ModuleLoader // default: jsmodule loader rooted at the working directory
	Minifier inject.Minifier   // default: inject.HTMLMinifier
	// DOM is installed when Options.DOM is set. With the default loader it
	// must be a *jsmodule.DOM to seed the evaluation runtimes; nil selects a
	// fresh one.
	DOM host.DOMInstaller
	Recorder metrics.Recorder // default: noop
}

// Plugin is the build-pipeline extension. It splits the build configuration
// once, then runs the content and document phases per build cycle, threading a
// fresh cycle context between them.
type Plugin struct {
	opts     *config.Options
	renderer *render.Renderer
	injector *inject.Injector
	recorder metrics.Recorder
	cache    *fragcache.Store

	mu      sync.Mutex
	current *cycle.Context
}

// NewPlugin constructs the extension and, when configured, installs the DOM
// simulation before any build work begins.
func NewPlugin(opts *config.Options, deps Deps) (*Plugin, error) {
	if opts == nil {
		return nil, fmt.Errorf("pipeline: nil options")
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}

	if deps.Loader == nil {
		jl := jsmodule.NewLoader("")
		if opts.DOM {
			// A caller-supplied installer takes precedence over a fresh one,
			// but only the jsmodule implementation can seed the loader's
			// runtimes.
			dom, ok := deps.DOM.(*jsmodule.DOM)
			if !ok || dom == nil {
				dom = jsmodule.NewDOM()
			}
			if err := dom.Install(opts.DOMSetup); err != nil {
				return nil, fmt.Errorf("pipeline: install dom environment: %w", err)
			}
			jl.DOM = dom
		}
		deps.Loader = jl
	} else if opts.DOM && deps.DOM != nil {
		if err := deps.DOM.Install(opts.DOMSetup); err != nil {
			return nil, fmt.Errorf("pipeline: install dom environment: %w", err)
		}
	}

	var cache *fragcache.Store
	if opts.CachePath != "" {
		var err error
		cache, err = fragcache.Open(opts.CachePath)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	return &Plugin{
		opts:     opts,
		renderer: render.New(deps.Loader, opts, cache, deps.Recorder),
		injector: inject.New(opts, deps.Minifier, deps.Recorder),
		recorder: deps.Recorder,
		cache:    cache,
	}, nil
}

// Apply mutates the build specification in place, deriving the document and
// content environments. Runs once at configuration time.
func (p *Plugin) Apply(b *config.Build) error {
	return envsplit.Split(b, p.opts.Entries, p.opts.Externals)
}

// BeforeEnvironment starts a fresh cycle when the content environment begins
// compiling. Overlapping cycles are unsupported; a still-pending previous
// barrier indicates a host scheduling contract violation and is logged.
func (p *Plugin) BeforeEnvironment(env string) {
	if env != host.EnvContent {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && !p.current.Settled() {
		slog.Warn("Starting new build cycle while previous barrier is pending", "previous_cycle", p.current.ID)
	}
	p.current = cycle.New()
	slog.Debug("Build cycle started", "cycle", p.current.ID)
}

// ProcessAssets dispatches one environment's produced assets to its phase.
func (p *Plugin) ProcessAssets(ctx context.Context, env string, assets *host.AssetSet) error {
	cyc := p.currentCycle()
	if cyc == nil {
		return fmt.Errorf("pipeline: %s assets processed before any content compilation started", env)
	}
	switch env {
	case host.EnvContent:
		if err := p.renderer.ProcessAssets(ctx, cyc, assets); err != nil {
			return &PhaseError{Phase: PhaseContent, Cycle: cyc.ID, Err: err}
		}
		return nil
	case host.EnvDocument:
		if err := p.injector.ProcessAssets(ctx, cyc, assets); err != nil {
			return &PhaseError{Phase: PhaseDocument, Cycle: cyc.ID, Err: err}
		}
		return nil
	default:
		return fmt.Errorf("pipeline: unknown environment %q", env)
	}
}

// Close releases plugin resources (the fragment cache).
func (p *Plugin) Close() error {
	if p.cache != nil {
		return p.cache.Close()
	}
	return nil
}

func (p *Plugin) currentCycle() *cycle.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
