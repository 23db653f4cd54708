package inject

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/cycle"
	"git.home.luguber.info/inful/prerender/internal/host"
)

func noMinify() *bool {
	off := false
	return &off
}

func resolvedCycle(fragments map[string]string) *cycle.Context {
	cyc := cycle.New()
	for entry, html := range fragments {
		cyc.SetFragment(entry, html)
	}
	cyc.Resolve()
	return cyc
}

func TestInjectReplacesFirstPlaceholderOnly(t *testing.T) {
	inj := New(&config.Options{Minify: noMinify()}, nil, nil)
	cyc := resolvedCycle(map[string]string{"index": "<p>Hi</p>"})
	assets := host.NewAssetSet()
	assets.Add("index.html", []byte("<body>__VUE_SSG__ and __VUE_SSG__</body>"))

	require.NoError(t, inj.ProcessAssets(context.Background(), cyc, assets))

	out, _ := assets.Get("index.html")
	assert.Equal(t, "<body><p>Hi</p> and __VUE_SSG__</body>", string(out.Data))
}

func TestInjectCustomPlaceholder(t *testing.T) {
	inj := New(&config.Options{Minify: noMinify(), Placeholder: "/__CONTENT__/"}, nil, nil)
	cyc := resolvedCycle(map[string]string{"index": "<p>Hi</p>"})
	assets := host.NewAssetSet()
	assets.Add("index.html", []byte("<body>/__CONTENT__/</body>"))

	require.NoError(t, inj.ProcessAssets(context.Background(), cyc, assets))

	out, _ := assets.Get("index.html")
	assert.Equal(t, "<body><p>Hi</p></body>", string(out.Data))
}

func TestMissingFragmentLeavesDocumentAlone(t *testing.T) {
	inj := New(&config.Options{Minify: noMinify()}, nil, nil)
	cyc := resolvedCycle(nil)
	assets := host.NewAssetSet()
	assets.Add("plain.html", []byte("<body>__VUE_SSG__</body>"))

	require.NoError(t, inj.ProcessAssets(context.Background(), cyc, assets))

	out, _ := assets.Get("plain.html")
	assert.Equal(t, "<body>__VUE_SSG__</body>", string(out.Data))
}

func TestNonHTMLAssetsPassThrough(t *testing.T) {
	inj := New(&config.Options{}, nil, nil)
	cyc := resolvedCycle(map[string]string{"app": "<p>nope</p>"})
	assets := host.NewAssetSet()
	assets.Add("app.css", []byte("body { color: red }"))

	require.NoError(t, inj.ProcessAssets(context.Background(), cyc, assets))

	out, _ := assets.Get("app.css")
	assert.Equal(t, "body { color: red }", string(out.Data))
}

func TestBarrierRejectionFailsEveryDocument(t *testing.T) {
	inj := New(&config.Options{Minify: noMinify()}, nil, nil)
	cyc := cycle.New()
	boom := errors.New("render of entry X failed")
	cyc.Reject(boom)

	assets := host.NewAssetSet()
	assets.Add("x.html", []byte("<body>__VUE_SSG__</body>"))
	assets.Add("unrelated.html", []byte("<body>static</body>"))

	err := inj.ProcessAssets(context.Background(), cyc, assets)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestMinifyBeforeInjectionPreservesFragmentMarkup(t *testing.T) {
	inj := New(&config.Options{}, nil, nil)
	// Fragments may contain placeholder comments that must survive intact.
	cyc := resolvedCycle(map[string]string{"index": "<!--[--><p>Hi</p><!--]-->"})
	assets := host.NewAssetSet()
	assets.Add("index.html", []byte("<html><head><!-- build comment --></head><body>  __VUE_SSG__  </body></html>"))

	require.NoError(t, inj.ProcessAssets(context.Background(), cyc, assets))

	out, _ := assets.Get("index.html")
	html := string(out.Data)
	assert.Contains(t, html, "<!--[--><p>Hi</p><!--]-->", "fragment comments must not be minified away")
	assert.NotContains(t, html, "build comment", "document comments are stripped before injection")
}

func TestScriptTerminatorPatchApplied(t *testing.T) {
	inj := New(&config.Options{Minify: noMinify()}, nil, nil)
	cyc := resolvedCycle(nil)
	assets := host.NewAssetSet()
	assets.Add("index.html", []byte("<head><script>var a=1</script></head>"))

	require.NoError(t, inj.ProcessAssets(context.Background(), cyc, assets))

	out, _ := assets.Get("index.html")
	assert.Contains(t, string(out.Data), "var a=1;")
}

type failingMinifier struct{}

func (failingMinifier) Minify(string, config.MinifyOptions) (string, error) {
	return "", errors.New("malformed input")
}

func TestMinifierFailureFailsPhase(t *testing.T) {
	inj := New(&config.Options{}, failingMinifier{}, nil)
	cyc := resolvedCycle(nil)
	assets := host.NewAssetSet()
	assets.Add("index.html", []byte("<body></body>"))

	err := inj.ProcessAssets(context.Background(), cyc, assets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minify index.html")
}

func TestPostProcessHook(t *testing.T) {
	opts := &config.Options{
		Minify: noMinify(),
		PostProcess: func(html, entry string) (string, error) {
			return html + "<!-- entry:" + entry + " -->", nil
		},
	}
	inj := New(opts, nil, nil)
	cyc := resolvedCycle(map[string]string{"index": "<p>Hi</p>"})
	assets := host.NewAssetSet()
	assets.Add("index.html", []byte("<body>__VUE_SSG__</body>"))

	require.NoError(t, inj.ProcessAssets(context.Background(), cyc, assets))

	out, _ := assets.Get("index.html")
	assert.Equal(t, "<body><p>Hi</p></body><!-- entry:index -->", string(out.Data))
}

func TestPostProcessFailureFailsPhase(t *testing.T) {
	opts := &config.Options{
		Minify:      noMinify(),
		PostProcess: func(string, string) (string, error) { return "", errors.New("rewrite failed") },
	}
	inj := New(opts, nil, nil)
	cyc := resolvedCycle(nil)
	assets := host.NewAssetSet()
	assets.Add("index.html", []byte("<body></body>"))

	require.Error(t, inj.ProcessAssets(context.Background(), cyc, assets))
}
