package alerts

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// htmlToPlainText converts the HTML retained from an alert's header or
// description (spec §4.5 step 8) into Markdown-like plain text: fenced
// code blocks, atx headings, hyphen bullets. Square-bracket route tokens
// like "[A]" are restored and runs of 3+ newlines are collapsed to one
// blank line.
func htmlToPlainText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + raw + "</div>"))
	if err != nil {
		return collapseBlankLines(unescapeEntities(raw))
	}
	root := doc.Find("div").First()
	if root.Length() == 0 {
		return collapseBlankLines(unescapeEntities(raw))
	}

	var b strings.Builder
	walkNode(root.Get(0), &b)

	return collapseBlankLines(strings.TrimSpace(unescapeEntities(b.String())))
}

func walkNode(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type != html.ElementNode {
		walkChildren(n, b)
		return
	}

	switch strings.ToLower(n.Data) {
	case "br":
		b.WriteString("\n")
	case "pre", "code":
		b.WriteString("\n```\n")
		walkChildren(n, b)
		b.WriteString("\n```\n")
	case "h1", "h2", "h3", "h4", "h5", "h6":
		b.WriteString("\n" + strings.Repeat("#", int(n.Data[1]-'0')) + " ")
		walkChildren(n, b)
		b.WriteString("\n")
	case "li":
		b.WriteString("\n- ")
		walkChildren(n, b)
	case "p", "div":
		walkChildren(n, b)
		b.WriteString("\n\n")
	default:
		walkChildren(n, b)
	}
}

func walkChildren(n *html.Node, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNode(c, b)
	}
}

var entityEscapes = strings.NewReplacer(
	`\[`, "[", `\]`, "]",
	"&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&apos;", "'", "&nbsp;", " ",
)

func unescapeEntities(s string) string {
	return entityEscapes.Replace(s)
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

func collapseBlankLines(s string) string {
	return blankRuns.ReplaceAllString(s, "\n\n")
}
