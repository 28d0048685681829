package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// tableCodec handles ValidationTable fields. Rows are addressed by (limit,
// index) where index counts only rows sharing that limit.
type tableCodec struct{}

type wireRow struct {
	Limit      string `json:"limit"`
	Continuous string `json:"continuous,omitempty"`
	Discrete   string `json:"discrete"`
	Meaning    string `json:"meaning"`
}

func (tableCodec) Decode(_ model.FieldSpec, raw json.RawMessage) (model.Value, error) {
	if isNull(raw) {
		return model.ValidationTable(nil), nil
	}
	var rows []wireRow
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rows); err != nil {
		return nil, mismatch("expected an array of {limit, discrete, meaning} rows")
	}
	if len(rows) == 0 {
		return model.ValidationTable(nil), nil
	}
	out := make(model.ValidationTable, len(rows))
	for idx, row := range rows {
		limit, err := model.ParseLimit(row.Limit)
		if err != nil {
			return nil, mismatch("row %d: %v", idx, err)
		}
		out[idx] = model.ValidationRow{
			Limit:      limit,
			Continuous: row.Continuous,
			Discrete:   row.Discrete,
			Meaning:    row.Meaning,
		}
	}
	return out, nil
}

func (tableCodec) Encode(_ model.FieldSpec, v model.Value) (json.RawMessage, error) {
	table, ok := v.(model.ValidationTable)
	if !ok {
		return nil, wrongValue(model.KindValidationTable, v)
	}
	rows := make([]wireRow, len(table))
	for idx, row := range table {
		if _, err := model.ParseLimit(string(row.Limit)); err != nil {
			return nil, mismatch("row %d: %v", idx, err)
		}
		rows[idx] = wireRow{
			Limit:      string(row.Limit),
			Continuous: row.Continuous,
			Discrete:   row.Discrete,
			Meaning:    row.Meaning,
		}
	}
	return json.Marshal(rows)
}

func (tableCodec) Display(_ model.FieldSpec, v model.Value) (Cell, error) {
	table, ok := v.(model.ValidationTable)
	if !ok {
		return Cell{}, wrongValue(model.KindValidationTable, v)
	}
	cell := Cell{Kind: model.KindValidationTable}
	counters := map[model.Limit]int{}
	summary := make([]string, 0, len(table))
	for _, row := range table {
		cell.Rows = append(cell.Rows, Row{
			Limit:      row.Limit,
			Index:      counters[row.Limit],
			Continuous: row.Continuous,
			Discrete:   row.Discrete,
			Meaning:    row.Meaning,
		})
		counters[row.Limit]++
		summary = append(summary, fmt.Sprintf("%s %s=%s", row.Limit, row.Discrete, row.Meaning))
	}
	cell.Text = strings.Join(summary, "; ")
	return cell, nil
}

func (tableCodec) Apply(_ model.FieldSpec, v model.Value, intent model.EditIntent) (model.Value, error) {
	table, ok := v.(model.ValidationTable)
	if !ok {
		return nil, wrongValue(model.KindValidationTable, v)
	}
	limit, err := model.ParseLimit(string(intent.Path.Limit))
	if err != nil {
		return nil, mismatch("%v", err)
	}

	switch op := intent.Operation(); op {
	case model.OpAddRow:
		return addRow(table, limit), nil

	case model.OpRemoveRow:
		pos, err := rowPosition(table, limit, intent.Path)
		if err != nil {
			return nil, err
		}
		if len(table) == 1 {
			return model.ValidationTable(nil), nil
		}
		out := make(model.ValidationTable, 0, len(table)-1)
		out = append(out, table[:pos]...)
		out = append(out, table[pos+1:]...)
		return out, nil

	case model.OpSet:
		pos, err := rowPosition(table, limit, intent.Path)
		if err != nil {
			return nil, err
		}
		s, err := stringValue(model.KindValidationTable, intent.NewValue)
		if err != nil {
			return nil, err
		}
		out := make(model.ValidationTable, len(table))
		copy(out, table)
		switch intent.Path.Column {
		case model.ColumnDiscrete:
			out[pos].Discrete = s
		case model.ColumnMeaning:
			out[pos].Meaning = s
		case model.ColumnContinuous:
			out[pos].Continuous = s
		default:
			return nil, mismatch("unknown validation column %q", intent.Path.Column)
		}
		return out, nil

	default:
		return nil, unsupportedOp(model.KindValidationTable, op)
	}
}

// addRow appends an empty row after the last row sharing limit. When the
// limit has no rows yet, upper rows are placed ahead of lower rows.
func addRow(table model.ValidationTable, limit model.Limit) model.ValidationTable {
	row := model.ValidationRow{Limit: limit}
	at := len(table)
	if positions := table.Positions(limit); len(positions) > 0 {
		at = positions[len(positions)-1] + 1
	} else if limit == model.LimitUpper {
		if lower := table.Positions(model.LimitLower); len(lower) > 0 {
			at = lower[0]
		}
	}
	out := make(model.ValidationTable, 0, len(table)+1)
	out = append(out, table[:at]...)
	out = append(out, row)
	out = append(out, table[at:]...)
	return out
}

func rowPosition(table model.ValidationTable, limit model.Limit, path model.Path) (int, error) {
	idx, err := requireIndex(path)
	if err != nil {
		return 0, err
	}
	positions := table.Positions(limit)
	if idx < 0 || idx >= len(positions) {
		return 0, outOfRange(idx, len(positions))
	}
	return positions[idx], nil
}
