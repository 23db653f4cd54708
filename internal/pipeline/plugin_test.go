package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/host"
	"git.home.luguber.info/inful/prerender/internal/jsmodule"
)

// stubLoader returns canned fragments keyed by asset name.
type stubLoader struct {
	html map[string]string
	fail map[string]error
}

func (s *stubLoader) Load(_ context.Context, name string, _ []byte) (host.Module, error) {
	if err, ok := s.fail[name]; ok {
		return nil, err
	}
	return stubModule(s.html[name]), nil
}

type stubModule string

func (m stubModule) NewApp() (host.App, error) { return stubApp(m), nil }

type stubApp string

func (stubApp) Provide(string, any) error { return nil }

func (a stubApp) RenderToString(context.Context) (string, error) { return string(a), nil }

func newTestPlugin(t *testing.T, loader host.ModuleLoader) *Plugin {
	t.Helper()
	off := false
	p, err := NewPlugin(&config.Options{
		Entries: map[string]string{"index": "index.js"},
		Minify:  &off,
	}, Deps{Loader: loader})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestProcessAssetsRequiresStartedCycle(t *testing.T) {
	p := newTestPlugin(t, &stubLoader{})
	err := p.ProcessAssets(context.Background(), host.EnvDocument, host.NewAssetSet())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before any content compilation")
}

func TestBeforeEnvironmentStartsFreshCycles(t *testing.T) {
	p := newTestPlugin(t, &stubLoader{})

	p.BeforeEnvironment(host.EnvDocument)
	assert.Nil(t, p.currentCycle(), "document environment must not start a cycle")

	p.BeforeEnvironment(host.EnvContent)
	first := p.currentCycle()
	require.NotNil(t, first)
	first.Resolve()

	p.BeforeEnvironment(host.EnvContent)
	second := p.currentCycle()
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.Settled())
}

func TestContentFailureWrapsPhaseError(t *testing.T) {
	boom := errors.New("evaluation exploded")
	p := newTestPlugin(t, &stubLoader{fail: map[string]error{"index.js": boom}})
	p.BeforeEnvironment(host.EnvContent)

	assets := host.NewAssetSet()
	assets.Add("index.js", []byte("compiled"))
	err := p.ProcessAssets(context.Background(), host.EnvContent, assets)
	require.Error(t, err)

	var pe *PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseContent, pe.Phase)
	assert.ErrorIs(t, err, boom)
}

func TestUnknownEnvironmentRejected(t *testing.T) {
	p := newTestPlugin(t, &stubLoader{})
	p.BeforeEnvironment(host.EnvContent)
	err := p.ProcessAssets(context.Background(), "staging", host.NewAssetSet())
	require.Error(t, err)
}

func TestSuppliedDOMInstallerUsedWithDefaultLoader(t *testing.T) {
	dom := jsmodule.NewDOM()
	setups := 0
	off := false
	p, err := NewPlugin(&config.Options{
		Entries: map[string]string{"index": "index.js"},
		Minify:  &off,
		DOM:     true,
		DOMSetup: func(s host.GlobalScope) error {
			setups++
			return s.Set("appName", "docs")
		},
	}, Deps{DOM: dom})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	assert.Equal(t, 1, setups)

	// The supplied installer was the one installed: installing it again is a
	// no-op and must not invoke another setup.
	require.NoError(t, dom.Install(func(host.GlobalScope) error {
		setups++
		return nil
	}))
	assert.Equal(t, 1, setups)
}

func TestApplySplitsBuild(t *testing.T) {
	p := newTestPlugin(t, &stubLoader{})
	b := &config.Build{Entries: map[string]string{"index": "index.html"}, OutputDir: "./site"}
	require.NoError(t, p.Apply(b))
	require.NotNil(t, b.DocumentEnv())
	require.NotNil(t, b.ContentEnv())
	assert.False(t, b.ContentEnv().EmitAssets)
}
