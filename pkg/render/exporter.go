package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// ErrJobPending is returned by Job.Result before the job has finished.
var ErrJobPending = errors.New("render: export job still running")

// ExportObserver receives one call per finished export job.
type ExportObserver interface {
	ObserveExport(backend string, start time.Time, err error)
}

// ExporterOption customises an Exporter.
type ExporterOption func(*Exporter)

// WithExportLogger sets the logger used for job lifecycle messages.
func WithExportLogger(logger *zap.Logger) ExporterOption {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithExportObserver registers an observer, typically the metrics recorder.
func WithExportObserver(observer ExportObserver) ExporterOption {
	return func(e *Exporter) {
		e.observer = observer
	}
}

// WithJobIDs overrides job id generation. Tests use it for stable ids.
func WithJobIDs(fn func() string) ExporterOption {
	return func(e *Exporter) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// Exporter runs renderers asynchronously. Each call works on its own snapshot
// of the document and reports through a Job, so a slow or failing backend
// never blocks edits or other exports.
type Exporter struct {
	registry *Registry
	logger   *zap.Logger
	observer ExportObserver
	newID    func() string
}

// NewExporter returns an Exporter resolving backends from registry.
func NewExporter(registry *Registry, options ...ExporterOption) *Exporter {
	e := &Exporter{
		registry: registry,
		logger:   zap.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Export starts rendering doc with the named backend and returns at once.
// Cancelling ctx is forwarded to the backend.
func (e *Exporter) Export(ctx context.Context, backend string, doc Document, opts RenderOptions) *Job {
	job := &Job{
		id:      e.newID(),
		backend: backend,
		formID:  doc.FormID,
		done:    make(chan struct{}),
	}
	snapshot := doc.Snapshot()
	if snapshot.Mode != model.ModeView {
		snapshot.Mode = model.ModeView
		for idx := range snapshot.Instructions {
			snapshot.Instructions[idx].Editable = false
		}
	}

	renderer, err := e.registry.Get(backend)
	if err != nil {
		err = exportFailure(job, err)
		e.observe(backend, time.Now(), err)
		job.finish(nil, "", err)
		return job
	}

	go e.run(ctx, job, renderer, snapshot, opts)
	return job
}

// ExportSync exports and waits for the result.
func (e *Exporter) ExportSync(ctx context.Context, backend string, doc Document, opts RenderOptions) ([]byte, error) {
	return e.Export(ctx, backend, doc, opts).Wait(ctx)
}

func (e *Exporter) run(ctx context.Context, job *Job, renderer Renderer, doc Document, opts RenderOptions) {
	start := time.Now()
	logger := e.logger.With(zap.String("job", job.id), zap.String("backend", job.backend), zap.String("form_id", job.formID))
	logger.Debug("export started")

	var (
		out []byte
		err error
	)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("backend panicked: %v", rec)
			}
		}()
		out, err = renderer.Render(ctx, doc, opts)
	}()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	if err != nil {
		err = exportFailure(job, err)
		logger.Warn("export failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		out = nil
	} else {
		logger.Debug("export finished", zap.Int("bytes", len(out)), zap.Duration("elapsed", time.Since(start)))
	}
	e.observe(job.backend, start, err)
	job.finish(out, renderer.ContentType(), err)
}

func (e *Exporter) observe(backend string, start time.Time, err error) {
	if e.observer != nil {
		e.observer.ObserveExport(backend, start, err)
	}
}

func exportFailure(job *Job, cause error) error {
	return &model.Error{
		Kind:   model.ErrExportFailure,
		Op:     "render",
		Detail: fmt.Sprintf("job %s (%s)", job.id, job.backend),
		Err:    cause,
	}
}

// Job tracks one export. Its result is written once, before Done is closed.
type Job struct {
	id          string
	backend     string
	formID      string
	done        chan struct{}
	output      []byte
	contentType string
	err         error
}

// ID returns the job identifier.
func (j *Job) ID() string { return j.id }

// Backend returns the renderer name the job runs.
func (j *Job) Backend() string { return j.backend }

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// ContentType returns the renderer's content type once the job succeeded.
func (j *Job) ContentType() string {
	select {
	case <-j.done:
		return j.contentType
	default:
		return ""
	}
}

// Result returns the output without blocking. It fails with ErrJobPending
// while the job is still running.
func (j *Job) Result() ([]byte, error) {
	select {
	case <-j.done:
		return j.output, j.err
	default:
		return nil, ErrJobPending
	}
}

// Wait blocks until the job finishes or ctx is done. Abandoning a wait does
// not cancel the job.
func (j *Job) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-j.done:
		return j.output, j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (j *Job) finish(out []byte, contentType string, err error) {
	j.output = out
	j.contentType = contentType
	j.err = err
	close(j.done)
}
