package cycle

import (
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestEntryName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"index.js", "index"},
		{"index.mjs", "index"},
		{"index.cjs", "index"},
		{"about.md", "about"},
		{"index.html", "index"},
		{"legacy.htm", "legacy"},
		{"docs/guide.js", "docs/guide"},
		{"styles.css", "styles.css"}, // unknown extension kept
		{"archive.tar.js", "archive.tar"},
	}
	for _, c := range cases {
		if got := EntryName(c.in); got != c.want {
			t.Errorf("EntryName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEntryNameNormalizesUnicode(t *testing.T) {
	// NFD "café" (decomposed) must key identically to NFC "café".
	decomposed := norm.NFD.String("café") + ".js"
	composed := norm.NFC.String("café") + ".html"
	if EntryName(decomposed) != EntryName(composed) {
		t.Fatalf("decomposed and composed forms must share a key: %q vs %q",
			EntryName(decomposed), EntryName(composed))
	}
}
