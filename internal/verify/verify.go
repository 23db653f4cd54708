// Package verify inspects final document output for injection problems:
// placeholders that were never consumed and documents with empty bodies. It is
// a diagnostic layer over the build output, outside the injection pipeline.
package verify

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// IssueKind classifies a verification finding.
type IssueKind string

const (
	IssueLeftoverPlaceholder IssueKind = "leftover_placeholder"
	IssueEmptyBody           IssueKind = "empty_body"
	IssueUnparseable         IssueKind = "unparseable"
)

// Issue is one finding in one document.
type Issue struct {
	Document string
	Kind     IssueKind
	Detail   string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Document, i.Kind, i.Detail)
}

// Document checks one final document payload. Findings are warnings; an empty
// result means the document looks fully injected.
func Document(name string, payload []byte, placeholder string) []Issue {
	var issues []Issue

	doc, err := html.Parse(strings.NewReader(string(payload)))
	if err != nil {
		return append(issues, Issue{Document: name, Kind: IssueUnparseable, Detail: err.Error()})
	}

	var bodyText strings.Builder
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inBody bool) {
		if n.Type == html.ElementNode && n.Data == "body" {
			inBody = true
		}
		if placeholder != "" && (n.Type == html.TextNode || n.Type == html.CommentNode) &&
			strings.Contains(n.Data, placeholder) {
			issues = append(issues, Issue{
				Document: name,
				Kind:     IssueLeftoverPlaceholder,
				Detail:   fmt.Sprintf("placeholder %q was not consumed", placeholder),
			})
		}
		if inBody && (n.Type == html.TextNode || n.Type == html.ElementNode) && n.Data != "body" {
			if n.Type == html.TextNode {
				bodyText.WriteString(n.Data)
			} else {
				// Any element inside body counts as content.
				bodyText.WriteString("x")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inBody)
		}
	}
	walk(doc, false)

	if strings.TrimSpace(bodyText.String()) == "" {
		issues = append(issues, Issue{Document: name, Kind: IssueEmptyBody, Detail: "document body is empty"})
	}
	return issues
}
