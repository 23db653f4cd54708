package config

import "git.home.luguber.info/inful/prerender/internal/host"

// Build represents the full build specification owned by the host build tool.
// The environment splitter mutates it exactly once before build start, moving
// top-level document settings into a named environment and synthesizing the
// content environment alongside it.
type Build struct {
	Title string `yaml:"title,omitempty"`

	// Top-level document output settings. Present only before splitting; the
	// splitter relocates them into Environments["document"] and clears them.
	Entries   map[string]string `yaml:"entries,omitempty"`   // entry name -> document source path
	Templates map[string]string `yaml:"templates,omitempty"` // template name -> path
	OutputDir string            `yaml:"output_dir,omitempty"`
	Budgets   *Budgets          `yaml:"budgets,omitempty"`
	Hooks     []string          `yaml:"hooks,omitempty"` // tool-specific hook identifiers

	Environments map[string]*Environment `yaml:"environments,omitempty"`
}

// Environment is a named configuration subset for one build environment.
// Exactly two exist after splitting: "document" (client-facing output) and
// "content" (server-rendering build).
type Environment struct {
	Name      string            `yaml:"name"`
	Entries   map[string]string `yaml:"entries,omitempty"`
	Templates map[string]string `yaml:"templates,omitempty"`
	OutputDir string            `yaml:"output_dir,omitempty"`
	Budgets   *Budgets          `yaml:"budgets,omitempty"`
	Hooks     []string          `yaml:"hooks,omitempty"`

	// Target selects the runtime the compiled output must run in: "browser"
	// for the document environment, "node" for the content environment (full
	// dynamic-module-loading capability).
	Target string `yaml:"target,omitempty"`

	// EmitAssets controls whether this environment's compiled output is written
	// to the final output directory. Disabled for the content environment: its
	// output is consumed in-process, never shipped.
	EmitAssets bool `yaml:"emit_assets"`

	Minify       bool     `yaml:"minify"`
	Sourcemaps   bool     `yaml:"sourcemaps"`
	SingleBundle bool     `yaml:"single_bundle"` // no split chunks; one payload per entry
	Externals    []string `yaml:"externals,omitempty"`
}

// Budgets holds performance budgets forwarded to the host build tool.
type Budgets struct {
	MaxAssetBytes  int `yaml:"max_asset_bytes,omitempty"`
	MaxEntryBytes  int `yaml:"max_entry_bytes,omitempty"`
	MaxAssetMillis int `yaml:"max_asset_millis,omitempty"`
}

// DocumentEnv returns the document environment, or nil before splitting.
func (b *Build) DocumentEnv() *Environment {
	if b == nil || b.Environments == nil {
		return nil
	}
	return b.Environments[host.EnvDocument]
}

// ContentEnv returns the content environment, or nil before splitting.
func (b *Build) ContentEnv() *Environment {
	if b == nil || b.Environments == nil {
		return nil
	}
	return b.Environments[host.EnvContent]
}
