// Package jsmodule evaluates compiled content bundles as CommonJS modules
// inside an embedded JavaScript runtime. It is the only place runtime code
// generation occurs; everything else in the pipeline sees the host.ModuleLoader
// interface and can substitute a fake.
package jsmodule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"git.home.luguber.info/inful/prerender/internal/host"
)

// Loader evaluates module source text in a fresh runtime per call. Externalized
// framework packages resolve through require() against SearchPath, which must
// match the process's working-directory-rooted module lookup.
type Loader struct {
	// SearchPath roots module resolution. Empty means the working directory.
	SearchPath string

	// DOM, when non-nil, seeds each runtime's global scope with the simulated
	// DOM environment before evaluation.
	DOM *DOM

	registry *require.Registry
}

// NewLoader constructs a loader rooted at searchPath (or the working directory
// when empty).
func NewLoader(searchPath string) *Loader {
	if searchPath == "" {
		if wd, err := os.Getwd(); err == nil {
			searchPath = wd
		}
	}
	l := &Loader{SearchPath: searchPath}
	l.registry = require.NewRegistry(require.WithGlobalFolders(
		searchPath,
		filepath.Join(searchPath, "node_modules"),
	))
	return l
}

// Load compiles and executes source as a CommonJS module and returns it. The
// module's default export is expected to be a renderable component definition.
func (l *Loader) Load(ctx context.Context, name string, source []byte) (host.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vm := goja.New()
	l.registry.Enable(vm)
	console.Enable(vm)
	if l.DOM != nil {
		if err := l.DOM.seed(vm); err != nil {
			return nil, fmt.Errorf("jsmodule: seed dom globals for %s: %w", name, err)
		}
	}

	prog, err := goja.Compile(name, "(function(module, exports, require) {\n"+string(source)+"\n})", false)
	if err != nil {
		return nil, fmt.Errorf("jsmodule: compile %s: %w", name, err)
	}
	wrapper, err := vm.RunProgram(prog)
	if err != nil {
		return nil, fmt.Errorf("jsmodule: evaluate %s: %w", name, err)
	}
	call, ok := goja.AssertFunction(wrapper)
	if !ok {
		return nil, fmt.Errorf("jsmodule: %s: module wrapper is not callable", name)
	}

	moduleObj := vm.NewObject()
	exports := vm.NewObject()
	if err := moduleObj.Set("exports", exports); err != nil {
		return nil, fmt.Errorf("jsmodule: %s: %w", name, err)
	}
	if _, err := call(goja.Undefined(), moduleObj, exports, vm.Get("require")); err != nil {
		return nil, fmt.Errorf("jsmodule: execute %s: %w", name, err)
	}

	return &module{vm: vm, name: name, exports: moduleObj.Get("exports")}, nil
}

// module is an evaluated content bundle. Discarded after rendering.
type module struct {
	vm      *goja.Runtime
	name    string
	exports goja.Value
}

// NewApp instantiates a server-renderable application from the default export.
// ES-module interop: an exports object carrying a `default` property uses that
// property; otherwise the exports value itself is the component definition.
func (m *module) NewApp() (host.App, error) {
	def := m.exports
	if obj, ok := m.exports.(*goja.Object); ok {
		if d := obj.Get("default"); d != nil && !goja.IsUndefined(d) && !goja.IsNull(d) {
			def = d
		}
	}
	if def == nil || goja.IsUndefined(def) || goja.IsNull(def) {
		return nil, fmt.Errorf("jsmodule: %s: no default export", m.name)
	}
	return &app{vm: m.vm, name: m.name, component: def, provides: m.vm.NewObject()}, nil
}

// app wraps a component definition plus the provided values injected by the
// ConfigureApp hook. Not safe for concurrent use; each render task owns its own
// runtime.
type app struct {
	vm        *goja.Runtime
	name      string
	component goja.Value
	provides  *goja.Object
}

func (a *app) Provide(key string, value any) error {
	if err := a.provides.Set(key, value); err != nil {
		return fmt.Errorf("jsmodule: %s: provide %q: %w", a.name, key, err)
	}
	return nil
}

// RenderToString renders the component. Supported component shapes, in order:
// a function (called with the provides object), an object with a render
// function (called the same way), or a plain string. Cancellation interrupts
// the runtime.
func (a *app) RenderToString(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			a.vm.Interrupt(ctx.Err())
		case <-stop:
		}
	}()
	defer a.vm.ClearInterrupt()

	render := a.component
	if obj, ok := a.component.(*goja.Object); ok {
		if r := obj.Get("render"); r != nil && !goja.IsUndefined(r) {
			render = r
		}
	}

	if fn, ok := goja.AssertFunction(render); ok {
		out, err := fn(a.component, a.provides)
		if err != nil {
			return "", fmt.Errorf("jsmodule: render %s: %w", a.name, err)
		}
		return a.settle(out)
	}

	if s, ok := a.component.Export().(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("jsmodule: %s: default export is not renderable", a.name)
}

// settle unwraps a render result, accepting plain strings and already-settled
// promises. There is no event loop here: a pending promise means the component
// relied on asynchrony the sandbox does not provide.
func (a *app) settle(v goja.Value) (string, error) {
	if p, ok := v.Export().(*goja.Promise); ok {
		switch p.State() {
		case goja.PromiseStateFulfilled:
			v = p.Result()
		case goja.PromiseStateRejected:
			return "", fmt.Errorf("jsmodule: render %s: promise rejected: %s", a.name, p.Result().String())
		default:
			return "", fmt.Errorf("jsmodule: render %s: promise did not settle", a.name)
		}
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", fmt.Errorf("jsmodule: render %s: empty result", a.name)
	}
	return v.String(), nil
}
