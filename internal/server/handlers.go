package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/openapi"
	"github.com/goliatone/go-formdoc/pkg/render"
)

type indexBody struct {
	Forms     []indexForm `json:"forms"`
	Renderers []string    `json:"renderers"`
}

type indexForm struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	FormID string `json:"formId"`
	Title  string `json:"title"`
	Href   string `json:"href"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	body := indexBody{Renderers: s.orch.Renderers().List()}
	records := s.orch.Records()
	for _, formType := range s.orch.Types() {
		record := records[formType]
		body.Forms = append(body.Forms, indexForm{
			Type:   formType,
			Name:   s.orch.Schemas().MustGet(formType).Name,
			FormID: record.FormID,
			Title:  record.Title,
			Href:   "/forms/" + url.PathEscape(formType),
		})
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	data, err := json.Marshal(s.apiDoc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetRaw(w http.ResponseWriter, _ *http.Request) {
	data, err := s.orch.Raw()
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, data)
}

// handlePutRaw checks the body against the OpenAPI record set schema
// before handing it to the bridge, so shape errors carry JSON pointers.
func (s *Server) handlePutRaw(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, model.Errorf(model.ErrParse, "server", "read body: %v", err))
		return
	}
	if err := openapi.ValidateRecordSetJSON(s.apiDoc, data); err != nil {
		writeError(w, err)
		return
	}
	if err := s.orch.LoadRaw(data); err != nil {
		writeError(w, err)
		return
	}
	s.handleGetRaw(w, r)
}

// handleForm serves view and edit pages through the page backend, and raw
// mode as JSON.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	formType := chi.URLParam(r, "type")
	query := r.URL.Query()
	mode, err := model.ParseMode(query.Get("mode"))
	if err != nil {
		writeError(w, model.Errorf(model.ErrParse, "server", "%v", err))
		return
	}
	if mode == model.ModeRaw {
		data, err := s.orch.RawRecord(formType)
		if err != nil {
			writeError(w, err)
			return
		}
		writeRawJSON(w, http.StatusOK, data)
		return
	}

	backend := query.Get("backend")
	if backend == "" {
		backend = s.pageBackend
	}
	opts := render.RenderOptions{Subset: render.ParseSubset(query.Get("fields"))}
	s.writePage(w, r, formType, mode, backend, http.StatusOK, opts)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, formType string, mode model.Mode, backend string, status int, opts render.RenderOptions) {
	out, contentType, err := s.orch.Render(r.Context(), formType, mode, backend, opts)
	if err != nil {
		if errors.Is(err, render.ErrRendererNotFound) {
			writeError(w, model.Errorf(model.ErrParse, "server", "unknown backend %q", backend))
			return
		}
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

// handleIntent applies one edit. JSON bodies get the updated record back.
// Form posts from edit pages redirect to the edit page on success and
// re-render it with inline errors on failure.
func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	formType := chi.URLParam(r, "type")
	fs, err := s.orch.Schemas().Get(formType)
	if err != nil {
		writeError(w, err)
		return
	}

	form := isFormPost(r)
	var intent model.EditIntent
	if form {
		intent, err = s.decodeFormIntent(w, r, fs)
	} else {
		intent, err = decodeJSONIntent(w, r)
	}
	if err == nil {
		err = checkFormType(&intent, formType)
	}
	if err == nil {
		_, err = s.orch.Apply(intent)
	}

	if err != nil {
		s.logger.Debug("intent failed", zap.String("form_type", formType), zap.Error(err))
		if form {
			s.writeEditErrors(w, r, formType, err)
			return
		}
		writeError(w, err)
		return
	}

	if form {
		http.Redirect(w, r, editURL(formType), http.StatusSeeOther)
		return
	}
	data, err := s.orch.RawRecord(formType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, data)
}

func (s *Server) decodeFormIntent(w http.ResponseWriter, r *http.Request, fs model.FormSchema) (model.EditIntent, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return model.EditIntent{}, model.Errorf(model.ErrParse, "server", "read form: %v", err)
	}
	key := strings.TrimSpace(r.PostForm.Get(render.InputFieldKey))
	spec, ok := fs.Field(key)
	if !ok {
		return model.EditIntent{}, model.Errorf(model.ErrUnknownField, "server", "no field %q", key).WithFormType(fs.Type).WithField(key)
	}
	return render.ParseIntentForm(r.PostForm, spec.Kind)
}

func decodeJSONIntent(w http.ResponseWriter, r *http.Request) (model.EditIntent, error) {
	var intent model.EditIntent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&intent); err != nil {
		return model.EditIntent{}, model.Errorf(model.ErrParse, "server", "decode intent: %v", err)
	}
	return intent, nil
}

// checkFormType fills an omitted form type from the route and rejects a
// conflicting one.
func checkFormType(intent *model.EditIntent, formType string) error {
	switch intent.FormType {
	case "":
		intent.FormType = formType
	case formType:
	default:
		return model.Errorf(model.ErrSchemaMismatch, "server", "intent targets %q but was posted to %q", intent.FormType, formType)
	}
	return nil
}

func (s *Server) writeEditErrors(w http.ResponseWriter, r *http.Request, formType string, cause error) {
	doc, err := s.orch.View(formType, model.ModeEdit)
	if err != nil {
		writeError(w, err)
		return
	}
	mapped := render.MapErrors(doc, cause)
	opts := render.RenderOptions{Errors: mapped.Fields, FormErrors: mapped.Form}
	s.writePage(w, r, formType, model.ModeEdit, s.pageBackend, statusFor(cause), opts)
}

// handleExport renders a view-mode snapshot and waits for it.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	formType := chi.URLParam(r, "type")
	job, err := s.orch.Export(r.Context(), formType, r.URL.Query().Get("backend"))
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := job.Wait(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	ext := job.Backend()
	if renderer, err := s.orch.Renderers().Get(job.Backend()); err == nil {
		ext = render.Extension(renderer)
	}
	w.Header().Set("Content-Type", job.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", formType+"."+ext))
	w.Header().Set("X-Export-Job", job.ID())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func editURL(formType string) string {
	return "/forms/" + url.PathEscape(formType) + "?mode=edit"
}
