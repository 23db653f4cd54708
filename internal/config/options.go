package config

import "git.home.luguber.info/inful/prerender/internal/host"

// DefaultPlaceholder is the literal substring replaced by a rendered fragment.
// At most the first occurrence per document is replaced.
const DefaultPlaceholder = "__VUE_SSG__"

// Options is the programmatic configuration surface of the prerender extension.
// Zero values select defaults; hook fields are optional.
type Options struct {
	// Entries maps content entry names to their module source paths. Each
	// content entry corresponds 1:1 to the document entry it injects into,
	// matched by name. Required.
	Entries map[string]string

	// Externals lists packages to treat as external in the content build, in
	// addition to the rendering framework's own packages.
	Externals []string

	// Minify toggles document minification. Nil means enabled with defaults.
	Minify *bool

	// MinifyOptions overrides the default minifier option set when non-nil.
	MinifyOptions *MinifyOptions

	// Placeholder overrides DefaultPlaceholder when non-empty.
	Placeholder string

	// ConfigureApp is invoked with each server-renderable application instance
	// and its entry name before rendering. Use it to install global state,
	// plugins, or providers.
	ConfigureApp func(app host.App, entry string) error

	// PostProcess is invoked with the (possibly injected) HTML and the entry
	// name; its return value becomes the final document payload.
	PostProcess func(html, entry string) (string, error)

	// DOM installs a simulated DOM global environment once per process before
	// any build work begins. DOMSetup, when set, receives the global scope for
	// further customization.
	DOM      bool
	DOMSetup func(scope host.GlobalScope) error

	// CachePath enables the fragment cache when non-empty. ":memory:" keeps
	// the cache for the process lifetime only.
	CachePath string
}

// MinifyOptions mirrors the HTML minifier collaborator's option surface.
type MinifyOptions struct {
	// KeepComments preserves HTML comments (default: stripped).
	KeepComments bool
	// KeepWhitespace preserves inter-element whitespace (default: collapsed).
	KeepWhitespace bool
	// MinifyInlineJS minifies inline <script> bodies.
	MinifyInlineJS bool
	// ECMAVersion caps the syntax level of minified inline scripts. The default
	// of 5 keeps error output inspectable under legacy JS engines.
	ECMAVersion int
}

// DefaultMinifyOptions returns the default minifier option set: collapse
// whitespace, strip comments, minify inline scripts with legacy-engine syntax.
func DefaultMinifyOptions() MinifyOptions {
	return MinifyOptions{MinifyInlineJS: true, ECMAVersion: 5}
}

// MinifyEnabled reports whether document minification is on.
func (o *Options) MinifyEnabled() bool {
	return o.Minify == nil || *o.Minify
}

// EffectiveMinifyOptions returns the caller override or the defaults.
func (o *Options) EffectiveMinifyOptions() MinifyOptions {
	if o.MinifyOptions != nil {
		return *o.MinifyOptions
	}
	return DefaultMinifyOptions()
}

// EffectivePlaceholder returns the configured placeholder literal.
func (o *Options) EffectivePlaceholder() string {
	if o.Placeholder != "" {
		return o.Placeholder
	}
	return DefaultPlaceholder
}
