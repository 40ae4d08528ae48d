// Package render turns scan results into the human and agent facing views
// served by the relay: Markdown, HTML and PDF.
package render

import (
	"fmt"
	"time"

	"github.com/raysh454/rawdata/internal/content"
	"github.com/raysh454/rawdata/internal/model"
)

const (
	maxTables        = 3
	maxTableRows     = 10
	maxPerGroup      = 30
	maxRepoFiles     = 50
	maxListedLinks   = 50
	markdownMainText = 3000
	htmlMainText     = 2000
)

// Timestamp formats t for display, or "Unknown" when unset.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func deref(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// clip truncates s to n runes and marks the cut with an ellipsis.
func clip(s string, n int) string {
	if c := content.Truncate(s, n); c != s {
		return c + "..."
	}
	return s
}

// ElementGroup is the elements of one type, in scan order.
type ElementGroup struct {
	Type     model.ElementType
	Total    int
	Elements []model.ElementDescriptor
}

// GroupElements buckets elements by type in first-seen order, keeping at most
// limit of each.
func GroupElements(elements []model.ElementDescriptor, limit int) []ElementGroup {
	var groups []ElementGroup
	index := map[model.ElementType]int{}
	for _, el := range elements {
		i, ok := index[el.Type]
		if !ok {
			i = len(groups)
			index[el.Type] = i
			groups = append(groups, ElementGroup{Type: el.Type})
		}
		groups[i].Total++
		if len(groups[i].Elements) < limit {
			groups[i].Elements = append(groups[i].Elements, el)
		}
	}
	return groups
}

func tables(in []model.Table) []model.Table {
	if len(in) > maxTables {
		in = in[:maxTables]
	}
	out := make([]model.Table, len(in))
	for i, t := range in {
		rows := t.Rows
		if len(rows) > maxTableRows {
			rows = rows[:maxTableRows]
		}
		out[i] = model.Table{Headers: t.Headers, Rows: rows}
	}
	return out
}

func pageCount(p *model.PDFContent) string {
	if p.TotalPages == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d of %d", p.PagesExtracted, p.TotalPages)
}
