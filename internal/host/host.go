package host

import "context"

// Environment names used by bundler hooks.
const (
	EnvDocument = "document"
	EnvContent  = "content"
)

// ModuleLoader evaluates compiled module source text and returns an executable
// module. Implementations own the evaluation mechanism (this is the only place
// runtime code generation occurs) and must resolve external imports against the
// configured search path.
type ModuleLoader interface {
	Load(ctx context.Context, name string, source []byte) (Module, error)
}

// Module is the evaluated form of a content asset. Its default export is a
// renderable component definition. Modules are discarded after rendering.
type Module interface {
	// NewApp instantiates a server-renderable application from the module's
	// default export.
	NewApp() (App, error)
}

// App is a server-renderable application instance built from a component
// definition.
type App interface {
	// Provide makes a keyed value available to the component during rendering.
	// Called by the ConfigureApp hook to inject global state, plugins, or
	// providers before rendering.
	Provide(key string, value any) error

	// RenderToString renders the application and returns the HTML fragment.
	RenderToString(ctx context.Context) (string, error)
}

// GlobalScope is the mutable global scope of a simulated DOM environment,
// exposed to the optional setup callback.
type GlobalScope interface {
	Set(name string, value any) error
	Get(name string) any
}

// DOMInstaller installs a simulated DOM into the rendering runtime. Install
// must be idempotent: the environment is set up exactly once per process, before
// any rendering occurs.
type DOMInstaller interface {
	Install(setup func(GlobalScope) error) error
}

// Bundler hook points exposed by the module compiler. The pipeline registers
// against these; it never drives compilation itself.
type Bundler interface {
	// BeforeEnvironment is invoked immediately before the named environment
	// begins compiling for a build cycle.
	BeforeEnvironment(env string)

	// ProcessAssets is invoked with the named environment's produced assets for
	// one build cycle. The callback may delete and replace assets in place.
	ProcessAssets(ctx context.Context, env string, assets *AssetSet) error
}
