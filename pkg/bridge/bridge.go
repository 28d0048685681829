package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-formdoc/pkg/codec"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

const indent = "  "

// wireRecord is the textual shape of one form. Fields is kept raw so repeated
// keys can be caught and every value decoded by the codec of its kind.
type wireRecord struct {
	FormID string          `json:"formId"`
	Title  string          `json:"title"`
	Fields json.RawMessage `json:"fields"`
}

// Serialize renders the record set as indented JSON. Form types are sorted,
// each record lists formId, title and fields, and fields follow schema order.
func Serialize(reg *schema.Registry, set model.RecordSet) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, formType := range set.Types() {
		s, err := reg.Get(formType)
		if err != nil {
			return nil, err
		}
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(formType)
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeRecord(&buf, s, set[formType]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return pretty(buf.Bytes())
}

// SerializeRecord renders a single record of schema s as indented JSON.
func SerializeRecord(s model.FormSchema, record model.FormRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeRecord(&buf, s, record); err != nil {
		return nil, err
	}
	return pretty(buf.Bytes())
}

// Validate reports whether record could be serialized under s: every field
// must be declared and hold a value its codec accepts. Failures are
// model.ErrSchemaMismatch.
func Validate(s model.FormSchema, record model.FormRecord) error {
	var buf bytes.Buffer
	return writeRecord(&buf, s, record)
}

func writeRecord(buf *bytes.Buffer, s model.FormSchema, record model.FormRecord) error {
	for key := range record.Fields {
		if _, ok := s.Field(key); !ok {
			return model.Errorf(model.ErrSchemaMismatch, "bridge", "record holds undeclared field").
				WithFormType(s.Type).WithField(key)
		}
	}

	formID, _ := json.Marshal(record.FormID)
	title, _ := json.Marshal(record.Title)
	buf.WriteString(`{"formId":`)
	buf.Write(formID)
	buf.WriteString(`,"title":`)
	buf.Write(title)
	buf.WriteString(`,"fields":{`)
	for idx, spec := range s.Fields {
		if idx > 0 {
			buf.WriteByte(',')
		}
		value, _ := record.Value(spec.Key)
		raw, err := codec.Encode(spec, value)
		if err != nil {
			return model.Scope(err, s.Type, spec.Key)
		}
		key, _ := json.Marshal(spec.Key)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteString("}}")
	return nil
}

func pretty(compact []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", indent); err != nil {
		return nil, fmt.Errorf("bridge: indent output: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Deserialize parses text into a record set. Malformed JSON fails with
// model.ErrParse; a document whose shape does not match the registered
// schemas fails with model.ErrSchemaMismatch. Nothing is returned on failure,
// so callers can keep their current state untouched.
func Deserialize(reg *schema.Registry, data []byte) (model.RecordSet, error) {
	if err := checkSyntax(data); err != nil {
		return nil, err
	}
	types, doc, err := codec.DecodeObject(data)
	if err != nil {
		return nil, &model.Error{
			Kind:   model.ErrSchemaMismatch,
			Op:     "bridge",
			Detail: "document must be an object keyed by form type",
			Err:    err,
		}
	}
	sort.Strings(types)

	set := make(model.RecordSet, len(doc))
	for _, formType := range types {
		raw := doc[formType]
		s, err := reg.Get(formType)
		if err != nil {
			return nil, &model.Error{
				Kind:     model.ErrSchemaMismatch,
				Op:       "bridge",
				FormType: formType,
				Detail:   "form type is not registered",
			}
		}
		record, err := decodeRecord(s, raw)
		if err != nil {
			return nil, err
		}
		set[formType] = record
	}
	return set, nil
}

// DeserializeRecord parses the JSON of a single record of schema s.
func DeserializeRecord(s model.FormSchema, data []byte) (model.FormRecord, error) {
	if err := checkSyntax(data); err != nil {
		return model.FormRecord{}, model.Scope(err, s.Type, "")
	}
	return decodeRecord(s, data)
}

func checkSyntax(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Errorf(model.ErrParse, "bridge", "document is empty")
	}
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		parseErr := model.Errorf(model.ErrParse, "bridge", "invalid JSON")
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			parseErr.Detail = fmt.Sprintf("invalid JSON at offset %d", syntax.Offset)
		}
		parseErr.Err = err
		return parseErr
	}
	return nil
}

func decodeRecord(s model.FormSchema, raw json.RawMessage) (model.FormRecord, error) {
	var wire wireRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return model.FormRecord{}, &model.Error{
			Kind:     model.ErrSchemaMismatch,
			Op:       "bridge",
			FormType: s.Type,
			Detail:   "record must be an object with formId, title and fields",
			Err:      err,
		}
	}
	if len(wire.Fields) == 0 || string(bytes.TrimSpace(wire.Fields)) == "null" {
		return model.FormRecord{}, model.Errorf(model.ErrSchemaMismatch, "bridge", "record has no fields object").WithFormType(s.Type)
	}
	keys, rawFields, err := codec.DecodeObject(wire.Fields)
	if err != nil {
		return model.FormRecord{}, model.Scope(err, s.Type, "")
	}
	for _, key := range keys {
		if _, ok := s.Field(key); !ok {
			return model.FormRecord{}, model.Errorf(model.ErrSchemaMismatch, "bridge", "field is not declared by the schema").
				WithFormType(s.Type).WithField(key)
		}
	}

	fields := make(map[string]model.Value, len(s.Fields))
	for _, spec := range s.Fields {
		value, err := codec.Decode(spec, rawFields[spec.Key])
		if err != nil {
			return model.FormRecord{}, model.Scope(err, s.Type, spec.Key)
		}
		fields[spec.Key] = value
	}
	return model.FormRecord{
		FormID: wire.FormID,
		Title:  wire.Title,
		Fields: fields,
	}, nil
}
