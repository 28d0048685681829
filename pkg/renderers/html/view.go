package html

import (
	"github.com/goliatone/go-formdoc/pkg/codec"
	"github.com/goliatone/go-formdoc/pkg/engine"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
)

// The view structs below are what the page template sees. They flatten the
// render instructions and precompute the hidden intent inputs of every edit
// control so templates never build addresses themselves.

type pageView struct {
	FormType   string            `json:"formType"`
	FormID     string            `json:"formId"`
	Title      string            `json:"title"`
	SchemaName string            `json:"schemaName"`
	Mode       string            `json:"mode"`
	Editable   bool              `json:"editable"`
	Action     string            `json:"action"`
	Sections   []sectionView     `json:"sections"`
	FormErrors []string          `json:"formErrors"`
	Hidden     []hiddenView      `json:"hidden"`
	Classes    map[string]string `json:"classes"`
	Theme      themeView         `json:"theme"`
	Styles     string            `json:"styles"`
	Stylesheet string            `json:"stylesheet"`
}

type themeView struct {
	Name    string            `json:"name"`
	Variant string            `json:"variant"`
	CSSVars map[string]string `json:"cssVars"`
}

type sectionView struct {
	Title  string      `json:"title"`
	Fields []fieldView `json:"fields"`
}

type hiddenView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type fieldView struct {
	Key      string       `json:"key"`
	Label    string       `json:"label"`
	Help     string       `json:"help"`
	Kind     string       `json:"kind"`
	ID       string       `json:"id"`
	LabelID  string       `json:"labelId"`
	Editable bool         `json:"editable"`
	Errors   []string     `json:"errors"`
	Text     string       `json:"text"`
	HTML     string       `json:"html"`
	Set      []hiddenView `json:"set"`
	Lines    []lineView   `json:"lines"`
	Insert   []hiddenView `json:"insert"`
	Items    []itemView   `json:"items"`
	Checks   []checkView  `json:"checks"`
	Groups   []groupView  `json:"groups"`
}

type lineView struct {
	Index  int          `json:"index"`
	Value  string       `json:"value"`
	Set    []hiddenView `json:"set"`
	Remove []hiddenView `json:"remove"`
}

type itemView struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Value string       `json:"value"`
	Set   []hiddenView `json:"set"`
}

type checkView struct {
	Name    string       `json:"name"`
	Label   string       `json:"label"`
	Checked bool         `json:"checked"`
	Set     []hiddenView `json:"set"`
}

type groupView struct {
	Limit string       `json:"limit"`
	Label string       `json:"label"`
	Rows  []rowView    `json:"rows"`
	Add   []hiddenView `json:"add"`
}

type rowView struct {
	Index  int          `json:"index"`
	First  bool         `json:"first"`
	Cells  []cellView   `json:"cells"`
	Remove []hiddenView `json:"remove"`
}

type cellView struct {
	Column string       `json:"column"`
	Value  string       `json:"value"`
	Set    []hiddenView `json:"set"`
}

var limitLabels = map[model.Limit]string{
	model.LimitUpper: "Upper Limit",
	model.LimitLower: "Lower Limit",
}

func buildPage(doc render.Document, opts render.RenderOptions) pageView {
	editable := doc.Mode == model.ModeEdit
	page := pageView{
		FormType:   doc.FormType,
		FormID:     doc.FormID,
		Title:      doc.Title,
		SchemaName: doc.SchemaName,
		Mode:       string(doc.Mode),
		Editable:   editable,
		FormErrors: render.MergeFormErrors(opts.FormErrors),
		Hidden:     hiddenViews(render.SortedHiddenFields(render.MergeHiddenFields(nil, opts.Hidden...))),
	}
	if page.Mode == "" {
		page.Mode = string(model.ModeView)
	}

	for _, section := range doc.Sections() {
		sv := sectionView{Title: section.Title}
		for _, inst := range section.Fields {
			fv := buildField(doc.FormType, inst)
			fv.Errors = opts.Errors[inst.Key]
			sv.Fields = append(sv.Fields, fv)
		}
		page.Sections = append(page.Sections, sv)
	}
	return page
}

func buildField(formType string, inst engine.RenderInstruction) fieldView {
	cell := inst.Display
	fv := fieldView{
		Key:      inst.Key,
		Label:    inst.Label,
		Help:     inst.Help,
		Kind:     string(inst.Kind),
		ID:       fieldControlID(formType, inst.Key),
		LabelID:  fieldLabelID(formType, inst.Key),
		Editable: inst.Editable,
		Text:     cell.Text,
	}
	intent := func(op model.EditOp, path model.Path) []hiddenView {
		if !inst.Editable {
			return nil
		}
		return hiddenViews(render.IntentFields(formType, inst.Key, op, path))
	}

	switch inst.Kind {
	case model.KindScalar:
		fv.Set = intent(model.OpSet, model.Path{})
	case model.KindScalarMultiline:
		fv.HTML = multilineHTML(cell.Lines)
		fv.Set = intent(model.OpSet, model.Path{})
	case model.KindStringList:
		for idx, line := range cell.Lines {
			fv.Lines = append(fv.Lines, lineView{
				Index:  idx,
				Value:  line,
				Set:    intent(model.OpSet, model.IndexPath(idx)),
				Remove: intent(model.OpRemove, model.IndexPath(idx)),
			})
		}
		fv.Insert = intent(model.OpInsert, model.Path{})
	case model.KindKeyedScalarMap, model.KindKeyValueRow:
		for _, item := range cell.Items {
			fv.Items = append(fv.Items, itemView{
				Key:   item.Key,
				Label: item.Label,
				Value: item.Value,
				Set:   intent(model.OpSet, model.KeyPath(item.Key)),
			})
		}
	case model.KindBooleanFlagSet:
		for _, check := range cell.Checks {
			fv.Checks = append(fv.Checks, checkView{
				Name:    check.Name,
				Label:   check.Label,
				Checked: check.Checked,
				Set:     intent(model.OpSet, model.KeyPath(check.Name)),
			})
		}
	case model.KindValidationTable:
		fv.Groups = buildGroups(cell.Rows, intent)
	}
	return fv
}

// buildGroups lists both limits even when empty so edit mode can add the
// first row of either.
func buildGroups(rows []codec.Row, intent func(model.EditOp, model.Path) []hiddenView) []groupView {
	groups := []groupView{
		{Limit: string(model.LimitUpper), Label: limitLabels[model.LimitUpper]},
		{Limit: string(model.LimitLower), Label: limitLabels[model.LimitLower]},
	}
	for gi := range groups {
		limit := model.Limit(groups[gi].Limit)
		groups[gi].Add = intent(model.OpAddRow, model.Path{Limit: limit})
		for _, row := range rows {
			if row.Limit != limit {
				continue
			}
			cell := func(column model.Column, value string) cellView {
				return cellView{
					Column: string(column),
					Value:  value,
					Set:    intent(model.OpSet, model.RowPath(limit, row.Index, column)),
				}
			}
			groups[gi].Rows = append(groups[gi].Rows, rowView{
				Index: row.Index,
				First: row.Index == 0,
				Cells: []cellView{
					cell(model.ColumnContinuous, row.Continuous),
					cell(model.ColumnDiscrete, row.Discrete),
					cell(model.ColumnMeaning, row.Meaning),
				},
				Remove: intent(model.OpRemoveRow, model.RowPath(limit, row.Index, "")),
			})
		}
	}
	return groups
}

func hiddenViews(fields []render.HiddenField) []hiddenView {
	if len(fields) == 0 {
		return nil
	}
	out := make([]hiddenView, 0, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out = append(out, hiddenView{Name: field.Name, Value: field.Value})
	}
	return out
}
