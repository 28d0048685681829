package codec

import "github.com/goliatone/go-formdoc/pkg/model"

// Cell is the renderer-facing presentation of one field value. Only the
// members relevant to the field's kind are populated; Text always carries a
// one-line summary so plain renderers can ignore the structured members.
type Cell struct {
	Kind   model.FieldKind `json:"kind"`
	Text   string          `json:"text"`
	Lines  []string        `json:"lines,omitempty"`
	Items  []Item          `json:"items,omitempty"`
	Checks []Check         `json:"checks,omitempty"`
	Rows   []Row           `json:"rows,omitempty"`
}

// Item is one entry of a keyed map or key/value row.
type Item struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Check is one checkbox of a flag set.
type Check struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// Row is one validation criterion. Index is the row's position among rows
// sharing its limit, which is how edits address it.
type Row struct {
	Limit      model.Limit `json:"limit"`
	Index      int         `json:"index"`
	Continuous string      `json:"continuous,omitempty"`
	Discrete   string      `json:"discrete"`
	Meaning    string      `json:"meaning"`
}
