package apply

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockElements end a line of description text.
const blockElements = "p, div, li, h1, h2, h3, h4, h5, h6, section, tr"

// ExtractDescription converts the outer HTML of a job description panel to plain text.
// Block elements become lines, list items are bulleted and blank lines are dropped.
func ExtractDescription(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse description HTML: %w", err)
	}

	doc.Find("script, style, noscript, button, svg, .visually-hidden").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("- ")
	doc.Find(blockElements).AppendHtml("\n")

	return cleanLines(doc.Text()), nil
}

// cleanLines collapses runs of whitespace inside each line and drops empty lines.
func cleanLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || line == "-" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// canonicalLink resolves href against the page it was found on and drops the query and
// fragment, which carry tracking parameters that differ between visits.
func canonicalLink(base, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", href, err)
	}
	if b, err := url.Parse(base); err == nil && b.IsAbs() {
		ref = b.ResolveReference(ref)
	}
	ref.RawQuery = ""
	ref.Fragment = ""
	return ref.String(), nil
}
