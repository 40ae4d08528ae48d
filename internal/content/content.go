// Package content extracts the readable text of a web page: main text,
// headings, tables, code blocks and displayed figures.
package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/logging"
	"github.com/raysh454/rawdata/internal/model"
)

// MainSelector picks the primary content container; body is the fallback.
const MainSelector = `main, article, [role="main"], .content, #content`

// Limits bounds every collection in a ContentSnapshot.
type Limits struct {
	MainText    int `yaml:"main_text"`
	Heading     int `yaml:"heading"`
	Tables      int `yaml:"tables"`
	TableRows   int `yaml:"table_rows"`
	Cell        int `yaml:"cell"`
	CodeBlocks  int `yaml:"code_blocks"`
	CodeMin     int `yaml:"code_min"`
	CodeMax     int `yaml:"code_max"`
	PatternHits int `yaml:"pattern_hits"`
}

// DefaultLimits returns the standard extraction bounds.
func DefaultLimits() Limits {
	return Limits{
		MainText:    2000,
		Heading:     200,
		Tables:      5,
		TableRows:   10,
		Cell:        100,
		CodeBlocks:  10,
		CodeMin:     10,
		CodeMax:     1000,
		PatternHits: 10,
	}
}

// Pattern is a named regular expression over the page text.
type Pattern struct {
	Key string
	Re  *regexp.Regexp
}

// DisplayedPatterns are the figures collected into displayed_data.
var DisplayedPatterns = []Pattern{
	{Key: "prices", Re: regexp.MustCompile(`\$[\d,]+\.?\d*`)},
	{Key: "percentages", Re: regexp.MustCompile(`\d+\.?\d*%`)},
	{Key: "crypto_amounts", Re: regexp.MustCompile(`(?i)\d+\.?\d*\s*(?:ETH|BTC|SOL|USDC|USDT)`)},
}

// Extractor builds ContentSnapshots.
type Extractor struct {
	limits   Limits
	logger   logging.Logger
	cellText func(*dom.Node) string
}

// NewExtractor returns an Extractor with the given limits.
func NewExtractor(limits Limits, logger logging.Logger) *Extractor {
	return &Extractor{
		limits:   limits,
		logger:   logger.With(logging.Field{Key: "component", Value: "content"}),
		cellText: func(n *dom.Node) string { return strings.TrimSpace(n.InnerText()) },
	}
}

// Extract never fails: a category that panics is logged and left empty.
func (e *Extractor) Extract(doc *dom.Document, eval *geometry.Evaluator) *model.ContentSnapshot {
	snap := &model.ContentSnapshot{
		Headings:      []model.Heading{},
		Tables:        []model.Table{},
		CodeBlocks:    []string{},
		DisplayedData: map[string][]string{},
	}
	e.guard("main_text", func() { snap.MainText = e.mainText(doc) })
	e.guard("headings", func() { snap.Headings = e.headings(doc) })
	e.guard("tables", func() { snap.Tables = e.tables(doc, eval) })
	e.guard("code_blocks", func() { snap.CodeBlocks = e.codeBlocks(doc) })
	e.guard("displayed_data", func() { snap.DisplayedData = e.displayedData(doc) })
	return snap
}

func (e *Extractor) guard(category string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("content category failed",
				logging.Field{Key: "category", Value: category},
				logging.Field{Key: "error", Value: fmt.Sprint(r)})
		}
	}()
	fn()
}

func (e *Extractor) mainText(doc *dom.Document) string {
	root := doc.First(MainSelector)
	if root == nil {
		root = doc.Body()
	}
	if root == nil {
		return ""
	}
	return Truncate(NormalizeText(root.InnerText()), e.limits.MainText)
}

func (e *Extractor) headings(doc *dom.Document) []model.Heading {
	out := []model.Heading{}
	for _, h := range doc.Find("h1, h2, h3") {
		text := strings.TrimSpace(h.InnerText())
		if text == "" || utf8.RuneCountInString(text) >= e.limits.Heading {
			continue
		}
		level, _ := strconv.Atoi(strings.TrimPrefix(h.Tag(), "h"))
		out = append(out, model.Heading{Level: level, Text: text})
	}
	return out
}

func (e *Extractor) tables(doc *dom.Document, eval *geometry.Evaluator) []model.Table {
	out := []model.Table{}
	for i, t := range doc.Find("table") {
		if len(out) == e.limits.Tables {
			break
		}
		if !eval.Visible(t.Box()) {
			continue
		}
		if table, ok := e.table(i, t); ok {
			out = append(out, table)
		}
	}
	return out
}

// table extracts one table. A panic drops only this table.
func (e *Extractor) table(i int, t *dom.Node) (table model.Table, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("table extraction failed",
				logging.Field{Key: "table", Value: i},
				logging.Field{Key: "error", Value: fmt.Sprint(r)})
			ok = false
		}
	}()

	table = model.Table{Headers: []string{}, Rows: [][]string{}}
	for _, th := range t.Find("th") {
		table.Headers = append(table.Headers, e.cellText(th))
	}
	for _, tr := range t.Find("tr") {
		if len(table.Rows) == e.limits.TableRows {
			break
		}
		var row []string
		for _, td := range tr.Find("td") {
			row = append(row, Truncate(e.cellText(td), e.limits.Cell))
		}
		if len(row) > 0 {
			table.Rows = append(table.Rows, row)
		}
	}
	return table, len(table.Headers) > 0 || len(table.Rows) > 0
}

func (e *Extractor) codeBlocks(doc *dom.Document) []string {
	out := []string{}
	var emitted []*dom.Node
	for _, n := range doc.Find("pre, code") {
		if len(out) == e.limits.CodeBlocks {
			break
		}
		if n.Tag() == "code" && insideAny(n, emitted) {
			continue
		}
		code := strings.TrimSpace(n.InnerText())
		l := utf8.RuneCountInString(code)
		if l <= e.limits.CodeMin || l >= e.limits.CodeMax {
			continue
		}
		out = append(out, code)
		if n.Tag() == "pre" {
			emitted = append(emitted, n)
		}
	}
	return out
}

func insideAny(n *dom.Node, ancestors []*dom.Node) bool {
	for _, a := range ancestors {
		if n.Within(a) {
			return true
		}
	}
	return false
}

func (e *Extractor) displayedData(doc *dom.Document) map[string][]string {
	out := map[string][]string{}
	body := doc.Body()
	if body == nil {
		return out
	}
	text := body.InnerText()
	for _, p := range DisplayedPatterns {
		if hits := Unique(p.Re.FindAllString(text, -1), e.limits.PatternHits); len(hits) > 0 {
			out[p.Key] = hits
		}
	}
	return out
}

var (
	inlineSpace = regexp.MustCompile(`[^\S\n]+`)
	blankRun    = regexp.MustCompile(`\n(?:[^\S\n]*\n)+`)
)

// NormalizeText collapses horizontal whitespace to single spaces and any run
// of blank lines to one blank line.
func NormalizeText(s string) string {
	s = inlineSpace.ReplaceAllString(s, " ")
	s = blankRun.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// Unique keeps the first occurrence of each value, up to limit values.
func Unique(values []string, limit int) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}
