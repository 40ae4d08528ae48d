package model

// Heading is one h1-h3 element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Table is a visible table reduced to header and data cell text.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ContentSnapshot is the structured text of a web page.
type ContentSnapshot struct {
	MainText      string              `json:"main_text"`
	Headings      []Heading           `json:"headings"`
	Tables        []Table             `json:"tables"`
	CodeBlocks    []string            `json:"code_blocks"`
	DisplayedData map[string][]string `json:"displayed_data"`
}
