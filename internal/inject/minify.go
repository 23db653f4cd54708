package inject

import (
	"regexp"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	mjs "github.com/tdewolff/minify/v2/js"

	"git.home.luguber.info/inful/prerender/internal/config"
)

// Minifier is the HTML minifier collaborator: a pure function over the document
// payload. Implementations may fail on malformed input.
type Minifier interface {
	Minify(html string, opts config.MinifyOptions) (string, error)
}

var scriptMediaType = regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`)

// HTMLMinifier is the default Minifier.
type HTMLMinifier struct{}

// Minify collapses whitespace and strips comments per opts. Inline script
// bodies are minified capped at opts.ECMAVersion so error output remains
// inspectable under legacy JS engines.
func (HTMLMinifier) Minify(html string, opts config.MinifyOptions) (string, error) {
	m := minify.New()
	m.Add("text/html", &mhtml.Minifier{
		KeepComments:     opts.KeepComments,
		KeepWhitespace:   opts.KeepWhitespace,
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	if opts.MinifyInlineJS {
		m.AddRegexp(scriptMediaType, &mjs.Minifier{Version: opts.ECMAVersion})
	}
	return m.String("text/html", html)
}
