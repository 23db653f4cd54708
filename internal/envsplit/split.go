// Package envsplit derives the two build-environment profiles from a single
// build specification: the client-facing "document" environment and the
// server-rendering "content" environment. Splitting is pure data transformation
// and runs once at configuration time.
package envsplit

import (
	"errors"
	"fmt"
	"sort"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/host"
)

// FrameworkExternals lists the rendering framework packages excluded from the
// content bundle; they resolve at render time via the loader's search path.
var FrameworkExternals = []string{"vue", "@vue/*"}

var (
	// ErrNilBuild is returned when no build specification is supplied.
	ErrNilBuild = errors.New("envsplit: nil build configuration")
	// ErrNoEntries is returned when no content entries are configured.
	ErrNoEntries = errors.New("envsplit: no content entries configured")
)

// Split rewrites the build specification to declare the document and content
// environments. Idempotent with respect to the document environment: when one
// already exists, top-level settings are not relocated again.
//
// Content entries come from the caller; each corresponds 1:1 to the document
// entry it injects into, matched by entry name (not enforced structurally).
func Split(b *config.Build, entries map[string]string, extraExternals []string) error {
	if b == nil {
		return ErrNilBuild
	}
	if len(entries) == 0 {
		return ErrNoEntries
	}
	if b.Environments == nil {
		b.Environments = make(map[string]*config.Environment, 2)
	}

	if b.DocumentEnv() == nil {
		if len(b.Entries) == 0 && b.OutputDir == "" {
			return fmt.Errorf("envsplit: build declares no document output settings: %w", ErrNoEntries)
		}
		b.Environments[host.EnvDocument] = &config.Environment{
			Name:       host.EnvDocument,
			Entries:    b.Entries,
			Templates:  b.Templates,
			OutputDir:  b.OutputDir,
			Budgets:    b.Budgets,
			Hooks:      b.Hooks,
			Target:     "browser",
			EmitAssets: true,
			Minify:     true,
			Sourcemaps: true,
		}
		// Clear relocated top-level settings so they are not applied twice.
		b.Entries = nil
		b.Templates = nil
		b.OutputDir = ""
		b.Budgets = nil
		b.Hooks = nil
	}

	b.Environments[host.EnvContent] = contentEnvironment(entries, extraExternals)
	return nil
}

// contentEnvironment synthesizes the server-rendering profile. Its output is
// consumed in-process: no asset emission, no minification, no sourcemaps, and
// exactly one deliverable payload per entry.
func contentEnvironment(entries map[string]string, extra []string) *config.Environment {
	ext := make([]string, 0, len(FrameworkExternals)+len(extra))
	ext = append(ext, FrameworkExternals...)
	ext = append(ext, extra...)
	sort.Strings(ext)

	own := make(map[string]string, len(entries))
	for k, v := range entries {
		own[k] = v
	}

	return &config.Environment{
		Name:         host.EnvContent,
		Entries:      own,
		Target:       "node",
		EmitAssets:   false,
		Minify:       false,
		Sourcemaps:   false,
		SingleBundle: true,
		Externals:    ext,
	}
}
