// Package config holds the build specification mutated by the environment
// splitter, the programmatic option surface of the prerender extension, and the
// yaml file configuration consumed by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the yaml configuration the CLI consumes. It describes where the
// local build driver finds precompiled content bundles and built documents, and
// which plugin options to apply.
type FileConfig struct {
	Title string `yaml:"title,omitempty"`

	// ContentDir holds the compiled content bundles (one file per entry),
	// produced by the real bundler out of band.
	ContentDir string `yaml:"content_dir"`

	// DocumentsDir holds the client-built document HTML.
	DocumentsDir string `yaml:"documents_dir"`

	// OutputDir receives the final injected documents.
	OutputDir string `yaml:"output_dir"`

	// ContentEntries maps entry names to bundle filenames within ContentDir.
	// Empty means every code file in ContentDir is an entry.
	ContentEntries map[string]string `yaml:"content_entries,omitempty"`

	Externals   []string `yaml:"externals,omitempty"`
	Minify      *bool    `yaml:"minify,omitempty"`
	Placeholder string   `yaml:"placeholder,omitempty"`
	Cache       string   `yaml:"cache,omitempty"`
	Verify      bool     `yaml:"verify,omitempty"`
	DOM         bool     `yaml:"dom,omitempty"`
}

// Load reads and validates a yaml configuration file.
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	fc.applyDefaults()
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	return &fc, nil
}

func (fc *FileConfig) applyDefaults() {
	if fc.OutputDir == "" {
		fc.OutputDir = "./site"
	}
	if fc.Placeholder == "" {
		fc.Placeholder = DefaultPlaceholder
	}
}

// Validate checks the minimum viable configuration.
func (fc *FileConfig) Validate() error {
	if fc.ContentDir == "" {
		return fmt.Errorf("config: content_dir is required")
	}
	if fc.DocumentsDir == "" {
		return fmt.Errorf("config: documents_dir is required")
	}
	return nil
}

// Options derives the plugin option surface from the file configuration.
func (fc *FileConfig) Options() *Options {
	return &Options{
		Entries:     fc.ContentEntries,
		Externals:   fc.Externals,
		Minify:      fc.Minify,
		Placeholder: fc.Placeholder,
		CachePath:   fc.Cache,
		DOM:         fc.DOM,
	}
}

// Sample returns a starter configuration file for the init command.
func Sample() string {
	return `# prerender configuration
title: My Site

# Compiled content bundles (one per entry), produced by your bundler.
content_dir: ./dist-content

# Client-built documents containing the injection placeholder.
documents_dir: ./dist

# Final output directory.
output_dir: ./site

# Entry name -> bundle file within content_dir. Omit to use every code file.
content_entries:
  index: index.js

# minify: true
# placeholder: __VUE_SSG__
# cache: .prerender-cache.db
# verify: true
`
}
