// Package classifier finds the interactive elements of a document and
// describes them.
package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/raysh454/rawdata/internal/dom"
	"github.com/raysh454/rawdata/internal/geometry"
	"github.com/raysh454/rawdata/internal/ident"
	"github.com/raysh454/rawdata/internal/model"
)

// Query selectors, in classification order.
const (
	ButtonSelector = `button, [role="button"], input[type="button"], input[type="submit"]`
	InputSelector  = `input:not([type="button"]):not([type="submit"]):not([type="hidden"]), textarea`
	LinkSelector   = `a[href]`
	SelectSelector = `select, [role="listbox"], [role="combobox"]`
	FormSelector   = `form`
)

const (
	maxInnerText = 100
	maxOptions   = 10
	minLinkText  = 2
)

// Candidate pairs a descriptor with the element it was built from. The node
// handle is needed for overlay placement and never leaves the scan.
type Candidate struct {
	Descriptor model.ElementDescriptor
	Node       *dom.Node
}

// Classify walks the document once per category and returns every visible
// interactive element. An element matched by an earlier category is skipped
// by later ones.
func Classify(doc *dom.Document, ids *ident.Allocator, eval *geometry.Evaluator) []Candidate {
	c := &classification{doc: doc, ids: ids, eval: eval, seen: map[int]bool{}}
	c.buttons()
	c.inputs()
	c.links()
	c.selects()
	c.forms()
	return c.out
}

// Descriptors strips node handles.
func Descriptors(cs []Candidate) []model.ElementDescriptor {
	out := make([]model.ElementDescriptor, len(cs))
	for i, c := range cs {
		out[i] = c.Descriptor
	}
	return out
}

type classification struct {
	doc  *dom.Document
	ids  *ident.Allocator
	eval *geometry.Evaluator
	seen map[int]bool
	out  []Candidate
}

// each yields the unclaimed visible nodes matching selector.
func (c *classification) each(selector string, fn func(n *dom.Node)) {
	for _, n := range c.doc.Find(selector) {
		if n.Index() >= 0 && c.seen[n.Index()] {
			continue
		}
		if !c.eval.Visible(n.Box()) {
			continue
		}
		fn(n)
	}
}

func (c *classification) add(n *dom.Node, d model.ElementDescriptor) {
	if n.Index() >= 0 {
		c.seen[n.Index()] = true
	}
	d.Location = string(c.eval.Region(n.Rect()))
	c.out = append(c.out, Candidate{Descriptor: d, Node: n})
}

func (c *classification) buttons() {
	c.each(ButtonSelector, func(n *dom.Node) {
		text := Text(n)
		if text == "" {
			text = "Button"
		}
		c.add(n, model.ElementDescriptor{
			ID:    c.ids.Allocate(ident.Button),
			Type:  model.TypeButton,
			Text:  text,
			State: StateOf(n),
		})
	})
}

func (c *classification) inputs() {
	c.each(InputSelector, func(n *dom.Node) {
		c.add(n, model.ElementDescriptor{
			ID:          c.ids.Allocate(ident.Input),
			Type:        model.TypeInput,
			Text:        Text(n),
			State:       StateOf(n),
			InputType:   inputType(n),
			Placeholder: n.AttrOr("placeholder", ""),
		})
	})
}

func (c *classification) links() {
	c.each(LinkSelector, func(n *dom.Node) {
		text := Text(n)
		if utf8.RuneCountInString(text) < minLinkText {
			return
		}
		href := n.Href()
		if strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		c.add(n, model.ElementDescriptor{
			ID:    c.ids.Allocate(ident.Link),
			Type:  model.TypeLink,
			Text:  text,
			State: StateOf(n),
			Href:  href,
		})
	})
}

func (c *classification) selects() {
	c.each(SelectSelector, func(n *dom.Node) {
		options := []string{}
		if n.Tag() == "select" {
			for _, opt := range n.Find("option") {
				if len(options) == maxOptions {
					break
				}
				options = append(options, strings.Join(strings.Fields(opt.TextContent()), " "))
			}
		}
		c.add(n, model.ElementDescriptor{
			ID:           c.ids.Allocate(ident.Select),
			Type:         model.TypeSelect,
			Text:         Text(n),
			State:        StateOf(n),
			CurrentValue: n.Value(),
			Options:      options,
		})
	})
}

func (c *classification) forms() {
	c.each(FormSelector, func(n *dom.Node) {
		text := strings.TrimSpace(n.AttrOr("aria-label", ""))
		if text == "" {
			text = strings.TrimSpace(n.AttrOr("name", ""))
		}
		if text == "" {
			text = "Form"
		}
		c.add(n, model.ElementDescriptor{
			ID:     c.ids.Allocate(ident.Form),
			Type:   model.TypeForm,
			Text:   text,
			State:  StateOf(n),
			Action: n.Action(),
			Method: formMethod(n),
		})
	})
}

// Text picks the most meaningful label of an element: aria-label, title,
// short rendered text, value, placeholder, then alt text.
func Text(n *dom.Node) string {
	for _, attr := range []string{"aria-label", "title"} {
		if v := strings.TrimSpace(n.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	if t := strings.TrimSpace(n.InnerText()); t != "" && utf8.RuneCountInString(t) < maxInnerText {
		return t
	}
	if v := strings.TrimSpace(n.Value()); v != "" {
		return v
	}
	if v := strings.TrimSpace(n.AttrOr("placeholder", "")); v != "" {
		return v
	}
	if v := strings.TrimSpace(n.AttrOr("alt", "")); v != "" {
		return v
	}
	if img := n.First("img[alt]"); img != nil {
		return strings.TrimSpace(img.AttrOr("alt", ""))
	}
	return ""
}

// StateOf returns the highest priority state that applies.
func StateOf(n *dom.Node) model.State {
	switch {
	case n.Disabled():
		return model.StateDisabled
	case n.ReadOnly():
		return model.StateReadOnly
	case n.Checked():
		return model.StateChecked
	case n.AttrOr("aria-disabled", "") == "true":
		return model.StateDisabled
	case n.AttrOr("aria-selected", "") == "true":
		return model.StateSelected
	case n.AttrOr("aria-expanded", "") == "true":
		return model.StateExpanded
	}
	return model.StateEnabled
}

func inputType(n *dom.Node) string {
	if n.Tag() == "textarea" {
		return "textarea"
	}
	if t := strings.ToLower(strings.TrimSpace(n.AttrOr("type", ""))); t != "" {
		return t
	}
	return "text"
}

func formMethod(n *dom.Node) string {
	switch m := strings.ToUpper(strings.TrimSpace(n.AttrOr("method", ""))); m {
	case "POST", "DIALOG":
		return m
	}
	return "GET"
}
