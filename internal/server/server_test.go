package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formdoc/internal/metrics"
	"github.com/goliatone/go-formdoc/internal/server"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/orchestrator"
	"github.com/goliatone/go-formdoc/pkg/sample"
)

type fixture struct {
	orch    *orchestrator.Orchestrator
	handler http.Handler
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	reg := prometheus.NewRegistry()
	orch, err := orchestrator.New(orchestrator.WithMetrics(metrics.New(reg)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = orch.Close() })

	srv, err := server.New(orch, server.WithGatherer(reg))
	require.NoError(t, err)
	return fixture{orch: orch, handler: srv.Handler()}
}

func (f fixture) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthAndIndex(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var index struct {
		Forms []struct {
			Type   string `json:"type"`
			FormID string `json:"formId"`
			Href   string `json:"href"`
		} `json:"forms"`
		Renderers []string `json:"renderers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &index))
	require.Len(t, index.Forms, 3)
	assert.Equal(t, "A", index.Forms[0].Type)
	assert.Equal(t, "ED-001", index.Forms[0].FormID)
	assert.Equal(t, "/forms/A", index.Forms[0].Href)
	assert.Contains(t, index.Renderers, "html")

	rec = f.do(t, http.MethodGet, "/assets/formdoc.css", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestGetForm(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/forms/A", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Member ID")

	rec = f.do(t, http.MethodGet, "/forms/A?mode=edit", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="A/intents"`)

	rec = f.do(t, http.MethodGet, "/forms/B?backend=text", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	rec = f.do(t, http.MethodGet, "/forms/A?mode=raw", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "fields")
}

func TestGetForm_Errors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/forms/Z", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_form_type", decodeError(t, rec)["kind"])

	rec = f.do(t, http.MethodGet, "/forms/A?mode=print", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/forms/A?backend=pdf", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostIntent_JSON(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/forms/A/intents", "application/json",
		`{"fieldKey":"aliases","op":"insert","newValue":"Member No"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Member No")

	record, err := f.orch.Record("A")
	require.NoError(t, err)
	aliases, _ := record.Value("aliases")
	assert.Len(t, aliases, 3)
}

func TestPostIntent_JSONErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
		kind   string
	}{
		{"index out of range", "/forms/A/intents", `{"fieldKey":"aliases","op":"remove","path":{"index":9}}`, http.StatusUnprocessableEntity, "index_out_of_range"},
		{"unknown field", "/forms/A/intents", `{"fieldKey":"colour","newValue":"red"}`, http.StatusUnprocessableEntity, "unknown_field"},
		{"unknown flag", "/forms/A/intents", `{"fieldKey":"dataType","path":{"key":"Binary"},"newValue":true}`, http.StatusUnprocessableEntity, "unknown_flag"},
		{"conflicting form type", "/forms/A/intents", `{"formType":"B","fieldKey":"name","newValue":"x"}`, http.StatusUnprocessableEntity, "schema_mismatch"},
		{"malformed body", "/forms/A/intents", `{"fieldKey":`, http.StatusBadRequest, "parse"},
		{"unknown form type", "/forms/Z/intents", `{"fieldKey":"name"}`, http.StatusNotFound, "unknown_form_type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tc.target, "application/json", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.kind, decodeError(t, rec)["kind"])
		})
	}

	record, err := f.orch.Record("A")
	require.NoError(t, err)
	name, _ := record.Value("name")
	assert.Equal(t, model.Text("Member ID"), name)
}

func TestPostIntent_Form(t *testing.T) {
	f := newFixture(t)

	values := url.Values{"fieldKey": {"name"}, "op": {"set"}, "newValue": {"Member Code"}}
	rec := f.do(t, http.MethodPost, "/forms/A/intents", "application/x-www-form-urlencoded", values.Encode())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/forms/A?mode=edit", rec.Header().Get("Location"))

	rec = f.do(t, http.MethodGet, "/forms/A?mode=raw", "", "")
	assert.Contains(t, rec.Body.String(), "Member Code")

	values = url.Values{"fieldKey": {"aliases"}, "op": {"remove"}, "index": {"9"}}
	rec = f.do(t, http.MethodPost, "/forms/A/intents", "application/x-www-form-urlencoded", values.Encode())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `data-field-errors="aliases"`)
}

func TestRaw(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/raw", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"A"`)

	rec = f.do(t, http.MethodPut, "/raw", "application/json", `{"A":{"fields":{"aliases":[1]}}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "schema_mismatch", decodeError(t, rec)["kind"])

	rec = f.do(t, http.MethodPut, "/raw", "application/json", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	updated := strings.Replace(string(sample.JSON()), "Member ID", "Member Key", 1)
	rec = f.do(t, http.MethodPut, "/raw", "application/json", updated)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Member Key")
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/forms/A/export?backend=text", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="A.txt"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Export-Job"))
	assert.Contains(t, rec.Body.String(), "Member ID")

	rec = f.do(t, http.MethodGet, "/forms/A/export?backend=markdown", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="A.md"`, rec.Header().Get("Content-Disposition"))

	rec = f.do(t, http.MethodGet, "/forms/A/export?backend=pdf", "", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "export_failure", decodeError(t, rec)["kind"])
}

func TestOpenAPIAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/openapi.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])

	f.do(t, http.MethodPost, "/forms/A/intents", "application/json", `{"fieldKey":"colour"}`)
	rec = f.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `formdoc_intents_total{form_type="A",result="unknown_field"} 1`)
}

func TestNew_RequiresOrchestrator(t *testing.T) {
	_, err := server.New(nil)
	assert.Error(t, err)
}
