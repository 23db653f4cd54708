// Package cycle carries the mutable state shared between the content and
// document phases of one build cycle: the rendered fragment mapping and the
// injection barrier. A fresh Context is constructed when the content
// environment starts compiling; state is never shared across cycles.
package cycle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/prerender/internal/future"
)

// Context is the per-build-cycle rendezvous between the two phases. The content
// renderer writes fragments and settles the barrier; the document injector
// awaits the barrier and reads fragments. No other access pattern is valid.
type Context struct {
	ID      string
	Started time.Time

	mu        sync.Mutex
	fragments map[string]string
	barrier   *future.Future[struct{}]
}

// New constructs a fresh cycle context with a pending barrier.
func New() *Context {
	return &Context{
		ID:        uuid.NewString(),
		Started:   time.Now(),
		fragments: make(map[string]string),
		barrier:   future.New[struct{}](),
	}
}

// SetFragment records a rendered fragment under its entry name. Each entry is
// written at most once per cycle, before the barrier settles.
func (c *Context) SetFragment(entry, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fragments[entry] = html
}

// Fragment returns the rendered fragment for an entry name. Callers must await
// the barrier first; a missing fragment is not an error.
func (c *Context) Fragment(entry string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	html, ok := c.fragments[entry]
	return html, ok
}

// Fragments returns a snapshot of all recorded fragments.
func (c *Context) Fragments() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.fragments))
	for k, v := range c.fragments {
		out[k] = v
	}
	return out
}

// Resolve settles the barrier successfully. Called by the renderer once all
// render tasks for the cycle have completed.
func (c *Context) Resolve() bool {
	return c.barrier.Resolve(struct{}{})
}

// Reject settles the barrier with the first render failure of the cycle.
func (c *Context) Reject(err error) bool {
	return c.barrier.Reject(err)
}

// Wait blocks until the cycle's barrier settles, returning the rejection error
// if rendering failed.
func (c *Context) Wait(ctx context.Context) error {
	_, err := c.barrier.Await(ctx)
	return err
}

// Settled reports whether this cycle's barrier has settled. A new cycle must
// never begin while the previous one is outstanding.
func (c *Context) Settled() bool {
	return c.barrier.Settled()
}
