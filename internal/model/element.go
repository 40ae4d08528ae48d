package model

import "encoding/json"

// ElementType is the kind of interactive element.
type ElementType string

const (
	TypeButton ElementType = "button"
	TypeInput  ElementType = "input"
	TypeLink   ElementType = "link"
	TypeSelect ElementType = "select"
	TypeForm   ElementType = "form"
)

// State is the single most salient interaction state of an element.
type State string

const (
	StateEnabled  State = "enabled"
	StateDisabled State = "disabled"
	StateReadOnly State = "readonly"
	StateChecked  State = "checked"
	StateSelected State = "selected"
	StateExpanded State = "expanded"
)

// ElementDescriptor is the serialisable description of one interactive
// element. Only the fields that belong to Type are written to JSON.
type ElementDescriptor struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	Text     string      `json:"text"`
	State    State       `json:"state"`
	Location string      `json:"location"`

	InputType   string `json:"inputType,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`

	Href string `json:"href,omitempty"`

	CurrentValue string   `json:"currentValue,omitempty"`
	Options      []string `json:"options,omitempty"`

	Action string `json:"action,omitempty"`
	Method string `json:"method,omitempty"`
}

func (d ElementDescriptor) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":       d.ID,
		"type":     d.Type,
		"text":     d.Text,
		"state":    d.State,
		"location": d.Location,
	}
	switch d.Type {
	case TypeInput:
		out["inputType"] = d.InputType
		out["placeholder"] = d.Placeholder
	case TypeLink:
		out["href"] = d.Href
	case TypeSelect:
		out["currentValue"] = d.CurrentValue
		opts := d.Options
		if opts == nil {
			opts = []string{}
		}
		out["options"] = opts
	case TypeForm:
		out["action"] = d.Action
		out["method"] = d.Method
	}
	return json.Marshal(out)
}
