package envsplit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/prerender/internal/config"
)

func docBuild() *config.Build {
	return &config.Build{
		Title:     "Site",
		Entries:   map[string]string{"index": "index.html"},
		OutputDir: "./site",
		Budgets:   &config.Budgets{MaxAssetBytes: 1 << 20},
		Hooks:     []string{"after-emit"},
	}
}

func TestSplitRelocatesDocumentSettings(t *testing.T) {
	b := docBuild()
	require.NoError(t, Split(b, map[string]string{"index": "index.js"}, nil))

	doc := b.DocumentEnv()
	require.NotNil(t, doc)
	assert.Equal(t, map[string]string{"index": "index.html"}, doc.Entries)
	assert.Equal(t, "./site", doc.OutputDir)
	assert.Equal(t, 1<<20, doc.Budgets.MaxAssetBytes)
	assert.Equal(t, []string{"after-emit"}, doc.Hooks)
	assert.True(t, doc.EmitAssets)

	// Relocated settings must be cleared from the top level.
	assert.Nil(t, b.Entries)
	assert.Empty(t, b.OutputDir)
	assert.Nil(t, b.Budgets)
	assert.Nil(t, b.Hooks)
}

func TestSplitSynthesizesContentEnvironment(t *testing.T) {
	b := docBuild()
	require.NoError(t, Split(b, map[string]string{"index": "index.js"}, []string{"lodash"}))

	c := b.ContentEnv()
	require.NotNil(t, c)
	assert.Equal(t, "node", c.Target)
	assert.False(t, c.EmitAssets)
	assert.False(t, c.Minify)
	assert.False(t, c.Sourcemaps)
	assert.True(t, c.SingleBundle)
	assert.Equal(t, map[string]string{"index": "index.js"}, c.Entries)
	assert.ElementsMatch(t, []string{"vue", "@vue/*", "lodash"}, c.Externals)
}

func TestSplitIdempotent(t *testing.T) {
	b := docBuild()
	require.NoError(t, Split(b, map[string]string{"index": "index.js"}, nil))
	first := *b.DocumentEnv()

	// Second application must not relocate again or lose data.
	require.NoError(t, Split(b, map[string]string{"index": "index.js"}, nil))
	assert.Equal(t, first, *b.DocumentEnv())
	assert.Nil(t, b.Entries)
}

func TestSplitValidation(t *testing.T) {
	assert.ErrorIs(t, Split(nil, map[string]string{"a": "a.js"}, nil), ErrNilBuild)
	assert.ErrorIs(t, Split(docBuild(), nil, nil), ErrNoEntries)
	assert.ErrorIs(t, Split(&config.Build{}, map[string]string{"a": "a.js"}, nil), ErrNoEntries)
}
