package render

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/cycle"
	"git.home.luguber.info/inful/prerender/internal/fragcache"
	"git.home.luguber.info/inful/prerender/internal/host"
)

// fakeLoader maps asset names to canned fragments or failures and counts loads.
type fakeLoader struct {
	html  map[string]string
	fail  map[string]error
	loads atomic.Int64
}

func (f *fakeLoader) Load(_ context.Context, name string, _ []byte) (host.Module, error) {
	f.loads.Add(1)
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	return &fakeModule{html: f.html[name]}, nil
}

type fakeModule struct{ html string }

func (m *fakeModule) NewApp() (host.App, error) {
	return &fakeApp{html: m.html, provides: map[string]any{}}, nil
}

type fakeApp struct {
	html     string
	provides map[string]any
}

func (a *fakeApp) Provide(key string, value any) error {
	a.provides[key] = value
	return nil
}

func (a *fakeApp) RenderToString(context.Context) (string, error) {
	if suffix, ok := a.provides["suffix"]; ok {
		return a.html + fmt.Sprint(suffix), nil
	}
	return a.html, nil
}

func contentSet(names ...string) *host.AssetSet {
	set := host.NewAssetSet()
	for _, n := range names {
		set.Add(n, []byte("compiled:"+n))
	}
	return set
}

func TestProcessAssetsRendersAndResolves(t *testing.T) {
	loader := &fakeLoader{html: map[string]string{
		"index.js": "<p>Hi</p>",
		"about.js": "<p>About</p>",
	}}
	r := New(loader, &config.Options{}, nil, nil)
	cyc := cycle.New()
	assets := contentSet("index.js", "about.js")

	require.NoError(t, r.ProcessAssets(context.Background(), cyc, assets))
	require.NoError(t, cyc.Wait(context.Background()))

	frag, ok := cyc.Fragment("index")
	require.True(t, ok)
	assert.Equal(t, "<p>Hi</p>", frag)
	frag, ok = cyc.Fragment("about")
	require.True(t, ok)
	assert.Equal(t, "<p>About</p>", frag)

	// Compiled content never ships.
	assert.Equal(t, 0, assets.Len())
}

func TestProcessAssetsRejectsBarrierOnFailure(t *testing.T) {
	boom := errors.New("module threw")
	loader := &fakeLoader{
		html: map[string]string{"ok.js": "<p>ok</p>"},
		fail: map[string]error{"bad.js": boom},
	}
	r := New(loader, &config.Options{}, nil, nil)
	cyc := cycle.New()
	assets := contentSet("ok.js", "bad.js")

	err := r.ProcessAssets(context.Background(), cyc, assets)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// Barrier must carry the failure to document-phase waiters.
	assert.ErrorIs(t, cyc.Wait(context.Background()), boom)
	assert.Equal(t, 0, assets.Len())
}

func TestConfigureAppHook(t *testing.T) {
	loader := &fakeLoader{html: map[string]string{"index.js": "<p>Hi</p>"}}
	var seenEntry string
	opts := &config.Options{
		ConfigureApp: func(app host.App, entry string) error {
			seenEntry = entry
			return app.Provide("suffix", "!")
		},
	}
	r := New(loader, opts, nil, nil)
	cyc := cycle.New()

	require.NoError(t, r.ProcessAssets(context.Background(), cyc, contentSet("index.js")))
	assert.Equal(t, "index", seenEntry)
	frag, _ := cyc.Fragment("index")
	assert.Equal(t, "<p>Hi</p>!", frag)
}

func TestConfigureAppFailureRejects(t *testing.T) {
	loader := &fakeLoader{html: map[string]string{"index.js": "<p>Hi</p>"}}
	opts := &config.Options{
		ConfigureApp: func(host.App, string) error { return errors.New("plugin setup failed") },
	}
	r := New(loader, opts, nil, nil)
	cyc := cycle.New()

	require.Error(t, r.ProcessAssets(context.Background(), cyc, contentSet("index.js")))
	require.Error(t, cyc.Wait(context.Background()))
}

func TestMarkdownAssetSkipsLoader(t *testing.T) {
	loader := &fakeLoader{}
	r := New(loader, &config.Options{}, nil, nil)
	cyc := cycle.New()
	assets := host.NewAssetSet()
	assets.Add("about.md", []byte("# About\n\nSome *prose*.\n"))

	require.NoError(t, r.ProcessAssets(context.Background(), cyc, assets))
	frag, ok := cyc.Fragment("about")
	require.True(t, ok)
	assert.Contains(t, frag, "<h1>About</h1>")
	assert.Contains(t, frag, "<em>prose</em>")
	assert.Equal(t, int64(0), loader.loads.Load())
}

func TestCacheHitSkipsEvaluation(t *testing.T) {
	store, err := fragcache.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	loader := &fakeLoader{html: map[string]string{"index.js": "<p>Hi</p>"}}
	r := New(loader, &config.Options{}, store, nil)

	first := cycle.New()
	require.NoError(t, r.ProcessAssets(context.Background(), first, contentSet("index.js")))
	require.Equal(t, int64(1), loader.loads.Load())

	// Same payload next cycle: fragment comes from the cache.
	second := cycle.New()
	require.NoError(t, r.ProcessAssets(context.Background(), second, contentSet("index.js")))
	assert.Equal(t, int64(1), loader.loads.Load())
	frag, ok := second.Fragment("index")
	require.True(t, ok)
	assert.Equal(t, "<p>Hi</p>", frag)
}

func TestUnmatchedEntryIsNotAnError(t *testing.T) {
	loader := &fakeLoader{html: map[string]string{"orphan.js": "<p>unused</p>"}}
	r := New(loader, &config.Options{}, nil, nil)
	cyc := cycle.New()

	require.NoError(t, r.ProcessAssets(context.Background(), cyc, contentSet("orphan.js")))
	frag, ok := cyc.Fragment("orphan")
	require.True(t, ok)
	assert.Equal(t, "<p>unused</p>", frag)
}
