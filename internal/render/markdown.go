package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raysh454/rawdata/internal/model"
)

// Markdown renders r as the agent-readable text served at /scan/{id}/ai.
// scanID labels the footer; the scan timestamp is used when it is empty.
func Markdown(r *model.ScanResult, scanID string) string {
	var b strings.Builder
	b.WriteString("# Website Scan - AI-Readable Format\n\n")
	fmt.Fprintf(&b, "**Source:** %s\n", orDefault(r.Meta.URL, "Unknown"))
	fmt.Fprintf(&b, "**Title:** %s\n", orDefault(r.Meta.Title, "Unknown"))
	fmt.Fprintf(&b, "**Scanned:** %s\n\n", Timestamp(r.Meta.Timestamp))

	if r.IsPDF() {
		writePDF(&b, r.PDF)
		b.WriteString("\n---\n\n*Generated by raw.data - PDF Scan*\n")
		return b.String()
	}

	b.WriteString("---\n\n")
	writeDeep(&b, r.DeepData)
	if r.Page != nil {
		writePage(&b, r.Page)
	}
	writeElements(&b, r.UIElements)

	if scanID == "" {
		scanID = r.Meta.Timestamp.UTC().Format("20060102T150405Z")
	}
	fmt.Fprintf(&b, "\n---\n\n*Generated by raw.data - Scan ID: %s*\n", scanID)
	return b.String()
}

func writePDF(b *strings.Builder, p *model.PDFContent) {
	b.WriteString("**Type:** PDF Document\n\n---\n\n")
	if p.Failed() {
		b.WriteString("## PDF Extraction Error\n\n")
		fmt.Fprintf(b, "%s\n\n%s\n\n", p.Error, p.Note)
		return
	}
	b.WriteString("## PDF Content\n\n")
	fmt.Fprintf(b, "**Word Count:** %d\n", p.WordCount)
	fmt.Fprintf(b, "**Extraction Method:** %s\n", orDefault(string(p.Method), "unknown"))
	fmt.Fprintf(b, "**Pages:** %s\n\n", pageCount(p))
	b.WriteString("### Full Text\n\n")
	b.WriteString(p.Text)
	b.WriteString("\n\n")
}

func writeDeep(b *strings.Builder, d *model.DeepData) {
	if d == nil {
		return
	}
	fmt.Fprintf(b, "## Deep Scan: %s\n\n", d.Source)
	switch data := d.Data.(type) {
	case *model.GitHubData:
		fmt.Fprintf(b, "**Repository:** %s\n", deref(data.Repo, "Unknown"))
		fmt.Fprintf(b, "**Stars:** %d | **Forks:** %d\n", data.Metrics.Stars, data.Metrics.Forks)
		fmt.Fprintf(b, "**Files:** %d\n", len(data.Files))
		fmt.Fprintf(b, "**Boilerplate Score:** %d%%\n\n", data.CodePatterns.BoilerplateScore)
		if len(data.Files) > 0 {
			b.WriteString("### File Structure\n\n")
			for i, f := range data.Files {
				if i == maxRepoFiles {
					break
				}
				fmt.Fprintf(b, "- %s (%s)\n", f.Name, f.Path)
			}
			b.WriteString("\n")
		}
		for _, p := range data.CodePatterns.SuspiciousPatterns {
			fmt.Fprintf(b, "> Warning: %s\n\n", p)
		}
	case *model.ExplorerData:
		fmt.Fprintf(b, "**Type:** %s\n", data.Type)
		fmt.Fprintf(b, "**Address:** %s\n", deref(data.Address, "Unknown"))
		fmt.Fprintf(b, "**Balance:** %s\n", deref(data.Balance, "Unknown"))
		if data.ContractName != nil {
			fmt.Fprintf(b, "**Contract:** %s (verified: %t)\n", *data.ContractName, data.Verified)
		}
		b.WriteString("\n")
	case *model.SolscanData:
		fmt.Fprintf(b, "**Type:** %s\n", data.Type)
		fmt.Fprintf(b, "**Address:** %s\n", deref(data.Address, "Unknown"))
		fmt.Fprintf(b, "**Balance:** %s\n\n", deref(data.Balance, "Unknown"))
	}
}

func writePage(b *strings.Builder, c *model.ContentSnapshot) {
	b.WriteString("## Page Structure\n\n")
	if len(c.Headings) > 0 {
		b.WriteString("### Headings\n\n")
		for _, h := range c.Headings {
			fmt.Fprintf(b, "%s %s\n", strings.Repeat("#", h.Level+2), h.Text)
		}
		b.WriteString("\n")
	}
	if c.MainText != "" {
		b.WriteString("### Main Content\n\n")
		b.WriteString(clip(c.MainText, markdownMainText))
		b.WriteString("\n\n")
	}
	if ts := tables(c.Tables); len(ts) > 0 {
		b.WriteString("### Tables\n\n")
		for i, t := range ts {
			fmt.Fprintf(b, "**Table %d:**\n\n", i+1)
			if len(t.Headers) > 0 {
				fmt.Fprintf(b, "| %s |\n", strings.Join(t.Headers, " | "))
				sep := make([]string, len(t.Headers))
				for j := range sep {
					sep[j] = "---"
				}
				fmt.Fprintf(b, "| %s |\n", strings.Join(sep, " | "))
			}
			for _, row := range t.Rows {
				fmt.Fprintf(b, "| %s |\n", strings.Join(row, " | "))
			}
			b.WriteString("\n")
		}
	}
	if len(c.CodeBlocks) > 0 {
		b.WriteString("### Code Blocks\n\n")
		for _, code := range c.CodeBlocks {
			fmt.Fprintf(b, "```\n%s\n```\n\n", code)
		}
	}
	if len(c.DisplayedData) > 0 {
		b.WriteString("### Displayed Data\n\n")
		keys := make([]string, 0, len(c.DisplayedData))
		for k := range c.DisplayedData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "- **%s:** %s\n", k, strings.Join(c.DisplayedData[k], ", "))
		}
		b.WriteString("\n")
	}
}

func writeElements(b *strings.Builder, elements []model.ElementDescriptor) {
	if len(elements) == 0 {
		return
	}
	fmt.Fprintf(b, "## Interactive Elements (%d)\n\n", len(elements))
	b.WriteString("*These are clickable/interactive elements on the page with their identifiers*\n\n")

	for _, g := range GroupElements(elements, maxPerGroup) {
		switch g.Type {
		case model.TypeButton:
			fmt.Fprintf(b, "### Buttons (%d)\n\n", g.Total)
			for _, el := range g.Elements {
				fmt.Fprintf(b, "- **[%s]** %q", el.ID, orDefault(el.Text, "No text"))
				if el.State != "" && el.State != model.StateEnabled {
					fmt.Fprintf(b, " (%s)", el.State)
				}
				b.WriteString("\n")
			}
		case model.TypeInput:
			fmt.Fprintf(b, "### Input Fields (%d)\n\n", g.Total)
			for _, el := range g.Elements {
				fmt.Fprintf(b, "- **[%s]** %s", el.ID, orDefault(el.InputType, "text"))
				if el.Placeholder != "" {
					fmt.Fprintf(b, " - %q", el.Placeholder)
				}
				if el.State != "" && el.State != model.StateEnabled {
					fmt.Fprintf(b, " (%s)", el.State)
				}
				b.WriteString("\n")
			}
		case model.TypeLink:
			if g.Total > maxListedLinks {
				continue
			}
			fmt.Fprintf(b, "### Links (%d)\n\n", g.Total)
			for _, el := range g.Elements {
				fmt.Fprintf(b, "- **[%s]** %q → %s\n", el.ID, el.Text, el.Href)
			}
		case model.TypeSelect:
			fmt.Fprintf(b, "### Selects (%d)\n\n", g.Total)
			for _, el := range g.Elements {
				fmt.Fprintf(b, "- **[%s]** %q = %q", el.ID, el.Text, el.CurrentValue)
				if len(el.Options) > 0 {
					fmt.Fprintf(b, " options: %s", strings.Join(el.Options, ", "))
				}
				b.WriteString("\n")
			}
		case model.TypeForm:
			fmt.Fprintf(b, "### Forms (%d)\n\n", g.Total)
			for _, el := range g.Elements {
				fmt.Fprintf(b, "- **[%s]** %s %s\n", el.ID, orDefault(el.Method, "GET"), orDefault(el.Action, "(same page)"))
			}
		default:
			continue
		}
		b.WriteString("\n")
	}
}
