package jsmodule

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"git.home.luguber.info/inful/prerender/internal/host"
)

// DOM is a minimal simulated browser environment for components that touch
// window or document during server rendering. Install runs exactly once per
// process, before any rendering; the resulting global table is seeded into
// every runtime the loader creates.
type DOM struct {
	once    sync.Once
	err     error
	mu      sync.RWMutex
	globals map[string]any
}

// NewDOM constructs an uninstalled simulated DOM.
func NewDOM() *DOM {
	return &DOM{globals: make(map[string]any)}
}

// Install populates the default globals and runs the optional setup callback
// with the global scope. Subsequent calls are no-ops returning the first
// outcome.
func (d *DOM) Install(setup func(host.GlobalScope) error) error {
	d.once.Do(func() {
		d.mu.Lock()
		d.globals["window"] = map[string]any{"location": map[string]any{"href": "http://localhost/"}}
		d.globals["document"] = map[string]any{"title": ""}
		d.globals["navigator"] = map[string]any{"userAgent": "prerender"}
		d.mu.Unlock()
		if setup != nil {
			d.err = setup(scope{d})
		}
	})
	return d.err
}

// seed copies the installed global table into a runtime's global object.
func (d *DOM) seed(vm *goja.Runtime) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for name, value := range d.globals {
		if err := vm.Set(name, value); err != nil {
			return fmt.Errorf("set global %q: %w", name, err)
		}
	}
	return nil
}

// scope exposes the DOM global table as a host.GlobalScope.
type scope struct{ d *DOM }

func (s scope) Set(name string, value any) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.d.globals[name] = value
	return nil
}

func (s scope) Get(name string) any {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	return s.d.globals[name]
}
