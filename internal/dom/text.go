package dom

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tr": true, "ul": true, "caption": true, "thead": true, "tbody": true,
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	spaceRun   = regexp.MustCompile(` {2,}`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// renderText approximates innerText: hidden subtrees are skipped, block
// boundaries become newlines and table cells are tab separated.
func renderText(n *html.Node, d *Document) string {
	var b strings.Builder
	var rec func(n *html.Node, pre bool)
	rec = func(n *html.Node, pre bool) {
		switch n.Type {
		case html.TextNode:
			if pre {
				b.WriteString(n.Data)
			} else {
				b.WriteString(whitespace.ReplaceAllString(n.Data, " "))
			}
			return
		case html.ElementNode:
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				rec(c, pre)
			}
			return
		}
		if d.hidden(n) {
			return
		}
		tag := n.Data
		if tag == "br" {
			b.WriteByte('\n')
			return
		}
		block := blockTags[tag]
		if block {
			b.WriteByte('\n')
		}
		inPre := pre || tag == "pre" || tag == "textarea"
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c, inPre)
		}
		switch {
		case tag == "td" || tag == "th":
			b.WriteByte('\t')
		case block:
			b.WriteByte('\n')
		}
	}
	rec(n, false)
	return tidyLines(b.String())
}

// hidden reports whether an element is display:none or never rendered.
func (d *Document) hidden(n *html.Node) bool {
	if v := attr(n, IndexAttr); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			if l, ok := d.layout[i]; ok {
				return strings.EqualFold(l.Style.Display, "none")
			}
		}
	}
	return noRender[n.Data]
}

func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(l, " "))
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
