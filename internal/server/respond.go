package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// errorBody mirrors the Error component of the OpenAPI document.
type errorBody struct {
	Error  string              `json:"error"`
	Kind   string              `json:"kind,omitempty"`
	Field  string              `json:"field,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
}

var kindNames = map[error]string{
	model.ErrUnknownFormType: "unknown_form_type",
	model.ErrUnknownField:    "unknown_field",
	model.ErrUnknownFlag:     "unknown_flag",
	model.ErrIndexOutOfRange: "index_out_of_range",
	model.ErrSchemaMismatch:  "schema_mismatch",
	model.ErrParse:           "parse",
	model.ErrExportFailure:   "export_failure",
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch model.KindOf(err) {
	case model.ErrUnknownFormType:
		return http.StatusNotFound
	case model.ErrUnknownField, model.ErrUnknownFlag, model.ErrIndexOutOfRange, model.ErrSchemaMismatch:
		return http.StatusUnprocessableEntity
	case model.ErrParse:
		return http.StatusBadRequest
	case model.ErrExportFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Kind: kindNames[model.KindOf(err)]}
	var typed *model.Error
	if errors.As(err, &typed) {
		body.Field = typed.Field
	}
	writeJSON(w, statusFor(err), body)
}

func isFormPost(r *http.Request) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}
