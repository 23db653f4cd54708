package inject

import (
	"regexp"
	"strings"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	scriptOpenRe  = regexp.MustCompile(`(?is)^<script\b[^>]*>`)
)

// EnsureScriptTerminators appends an explicit statement terminator to every
// inline <script> body that lacks one. Minifiers may emit a trailing
// non-terminated statement that would merge with content appended later; this
// patch guarantees each script block is self-terminated before any further
// string surgery. Additive and idempotent: already-terminated or empty bodies
// are untouched.
func EnsureScriptTerminators(html string) string {
	return scriptBlockRe.ReplaceAllStringFunc(html, func(block string) string {
		open := scriptOpenRe.FindString(block)
		closeLen := len("</script>")
		body := block[len(open) : len(block)-closeLen]
		trimmed := strings.TrimRight(body, " \t\r\n")
		if trimmed == "" || strings.HasSuffix(trimmed, ";") {
			return block
		}
		return open + trimmed + ";" + body[len(trimmed):] + block[len(block)-closeLen:]
	})
}
