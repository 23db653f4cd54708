package cycle

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// code extensions stripped when deriving an entry name from a content asset.
var codeExtensions = map[string]bool{
	".js": true, ".mjs": true, ".cjs": true, ".md": true,
}

// document extensions stripped when deriving an entry name from a document asset.
var documentExtensions = map[string]bool{
	".html": true, ".htm": true,
}

// EntryName derives the fragment key from an asset name: the name with its
// code or document extension removed, NFC-normalized so that fragments keyed by
// content assets match lookups keyed by document assets regardless of how the
// filesystem encoded the name.
func EntryName(assetName string) string {
	ext := strings.ToLower(path.Ext(assetName))
	if codeExtensions[ext] || documentExtensions[ext] {
		assetName = assetName[:len(assetName)-len(ext)]
	}
	return norm.NFC.String(assetName)
}
