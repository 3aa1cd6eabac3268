package util

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML extracts the visible text from an HTML fragment. Generated
// descriptions are HTML for Shopify; scoring works on the plain text.
func StripHTML(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return strings.TrimSpace(fragment)
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteString(" ")
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true,
}
