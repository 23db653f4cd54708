// Package host defines the boundary between the prerender pipeline and its
// external collaborators: the module bundler that produces compiled assets, the
// sandboxed loader that evaluates them, and the optional DOM simulation layer.
// The pipeline orchestrates these collaborators; it never bundles, resolves
// modules, or parses HTML itself.
package host
