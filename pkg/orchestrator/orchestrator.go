package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/bridge"
	"github.com/goliatone/go-formdoc/pkg/engine"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/sample"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects the schema registry. The embedded schemas are used
// otherwise.
func WithRegistry(registry *schema.Registry) Option {
	return func(o *Orchestrator) {
		o.schemas = registry
	}
}

// WithRenderers injects the export backend registry.
func WithRenderers(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.renderers = registry
	}
}

// WithDefaultRenderer overrides the backend used when a call names none.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithRecords seeds the session. The embedded sample set is used otherwise.
func WithRecords(set model.RecordSet) Option {
	return func(o *Orchestrator) {
		o.seed = set
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records renders, intents, loads and exports.
func WithMetrics(metrics Metrics) Option {
	return func(o *Orchestrator) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithExporterOptions forwards options to the export runner.
func WithExporterOptions(options ...render.ExporterOption) Option {
	return func(o *Orchestrator) {
		o.exporterOptions = append(o.exporterOptions, options...)
	}
}

// Orchestrator owns one editing session. It is safe for concurrent use.
type Orchestrator struct {
	schemas         *schema.Registry
	engine          *engine.Engine
	renderers       *render.Registry
	defaultRenderer string
	exporter        *render.Exporter
	exporterOptions []render.ExporterOption
	seed            model.RecordSet
	records         atomic.Pointer[model.RecordSet]
	logger          *zap.Logger
	metrics         Metrics

	themeSelector  theme.ThemeSelector
	themeName      string
	themeVariant   string
	themeFallbacks map[string]string
}

// New constructs an Orchestrator. Missing dependencies fall back to the
// embedded schemas, the sample record set and the built-in backends.
func New(options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
		metrics:         nopMetrics{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}

	if o.schemas == nil {
		reg, err := schema.Default()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load schemas: %w", err)
		}
		o.schemas = reg
	}
	o.engine = engine.New(o.schemas)

	if o.renderers == nil {
		reg, err := DefaultRenderers(o.logger)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: default renderers: %w", err)
		}
		o.renderers = reg
	}
	exporterOptions := append([]render.ExporterOption{
		render.WithExportLogger(o.logger),
		render.WithExportObserver(o.metrics),
	}, o.exporterOptions...)
	o.exporter = render.NewExporter(o.renderers, exporterOptions...)

	set := o.seed
	if set == nil {
		loaded, err := sample.Records(o.schemas)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load sample records: %w", err)
		}
		set = loaded
	}
	if err := o.checkTypes(set); err != nil {
		return nil, err
	}
	o.store(set)
	o.seed = nil
	return o, nil
}

// Schemas returns the schema registry.
func (o *Orchestrator) Schemas() *schema.Registry {
	return o.schemas
}

// Renderers returns the export backend registry.
func (o *Orchestrator) Renderers() *render.Registry {
	return o.renderers
}

// Types lists the registered form types in sorted order.
func (o *Orchestrator) Types() []string {
	return o.schemas.Types()
}

// Records returns the current set. The map is a copy; values are shared and
// must be treated as read-only.
func (o *Orchestrator) Records() model.RecordSet {
	current := o.load()
	out := make(model.RecordSet, len(current))
	for formType, record := range current {
		out[formType] = record
	}
	return out
}

// Record returns the current record for formType.
func (o *Orchestrator) Record(formType string) (model.FormRecord, error) {
	if _, err := o.schemas.Get(formType); err != nil {
		return model.FormRecord{}, err
	}
	return o.load()[formType], nil
}

// View renders formType in mode. Raw mode has no field projection; use
// RawRecord for it.
func (o *Orchestrator) View(formType string, mode model.Mode) (render.Document, error) {
	s, err := o.schemas.Get(formType)
	if err != nil {
		return render.Document{}, err
	}
	doc, err := render.NewDocumentMode(s, o.load()[formType], mode)
	if err != nil {
		return render.Document{}, err
	}
	o.metrics.ObserveRender(formType, doc.Mode)
	return doc, nil
}

// Apply merges intent into the current set and returns the updated record.
// Concurrent applies are serialised by compare-and-swap; a failed intent
// leaves the set untouched.
func (o *Orchestrator) Apply(intent model.EditIntent) (model.FormRecord, error) {
	for {
		current := o.records.Load()
		next, err := o.engine.Apply((*current)[intent.FormType], intent)
		if err != nil {
			o.metrics.ObserveIntent(intent.FormType, err)
			o.logger.Debug("intent rejected", zap.Stringer("intent", intent), zap.Error(err))
			return model.FormRecord{}, err
		}
		updated := current.With(intent.FormType, next)
		if o.records.CompareAndSwap(current, &updated) {
			o.metrics.ObserveIntent(intent.FormType, nil)
			o.logger.Debug("intent applied", zap.Stringer("intent", intent))
			return next, nil
		}
	}
}

// Put replaces the record of formType wholesale, as the interactive editor
// does when it finishes. A record that does not fit the schema fails with
// model.ErrSchemaMismatch and the current set is kept.
func (o *Orchestrator) Put(formType string, record model.FormRecord) error {
	s, err := o.schemas.Get(formType)
	if err != nil {
		return err
	}
	if err := bridge.Validate(s, record); err != nil {
		o.logger.Warn("record rejected", zap.String("form_type", formType), zap.Error(err))
		return err
	}
	for {
		current := o.records.Load()
		updated := current.With(formType, record)
		if o.records.CompareAndSwap(current, &updated) {
			return nil
		}
	}
}

// Raw serializes the current set.
func (o *Orchestrator) Raw() ([]byte, error) {
	return bridge.Serialize(o.schemas, o.load())
}

// LoadRaw deserializes data and swaps it in. On failure the current set is
// kept.
func (o *Orchestrator) LoadRaw(data []byte) error {
	set, err := bridge.Deserialize(o.schemas, data)
	o.metrics.ObserveLoad(err)
	if err != nil {
		o.logger.Warn("record set rejected", zap.Error(err))
		return err
	}
	o.store(set)
	o.logger.Info("record set loaded", zap.Strings("types", set.Types()))
	return nil
}

// RawRecord serializes the current record of formType.
func (o *Orchestrator) RawRecord(formType string) ([]byte, error) {
	s, err := o.schemas.Get(formType)
	if err != nil {
		return nil, err
	}
	return bridge.SerializeRecord(s, o.load()[formType])
}

// LoadRawRecord deserializes one record and swaps it in. On failure the
// current set is kept.
func (o *Orchestrator) LoadRawRecord(formType string, data []byte) (model.FormRecord, error) {
	s, err := o.schemas.Get(formType)
	if err != nil {
		return model.FormRecord{}, err
	}
	record, err := bridge.DeserializeRecord(s, data)
	o.metrics.ObserveLoad(err)
	if err != nil {
		return model.FormRecord{}, err
	}
	if err := o.Put(formType, record); err != nil {
		return model.FormRecord{}, err
	}
	return record, nil
}

// Render produces formType synchronously through a backend. Edit-mode pages
// use this; exports go through Export.
func (o *Orchestrator) Render(ctx context.Context, formType string, mode model.Mode, backend string, opts render.RenderOptions) ([]byte, string, error) {
	renderer, err := o.rendererFor(backend)
	if err != nil {
		return nil, "", err
	}
	doc, err := o.View(formType, mode)
	if err != nil {
		return nil, "", err
	}
	if opts.Theme == nil {
		cfg, err := o.ThemeConfig()
		if err != nil {
			return nil, "", err
		}
		opts.Theme = cfg
	}
	out, err := renderer.Render(ctx, doc, opts)
	if err != nil {
		return nil, "", fmt.Errorf("orchestrator: render %s: %w", renderer.Name(), err)
	}
	return out, renderer.ContentType(), nil
}

// Export snapshots formType in view mode now and renders it in the
// background. An empty backend selects the default one.
func (o *Orchestrator) Export(ctx context.Context, formType, backend string) (*render.Job, error) {
	if backend == "" {
		backend = o.defaultRenderer
	}
	doc, err := o.View(formType, model.ModeView)
	if err != nil {
		return nil, err
	}
	cfg, err := o.ThemeConfig()
	if err != nil {
		return nil, err
	}
	return o.exporter.Export(ctx, backend, doc, render.RenderOptions{Theme: cfg}), nil
}

// Close releases backends holding external resources, such as a browser.
func (o *Orchestrator) Close() error {
	var errs []error
	for _, name := range o.renderers.List() {
		renderer, err := o.renderers.Get(name)
		if err != nil {
			continue
		}
		if closer, ok := renderer.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("orchestrator: close %s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	renderer, err := o.renderers.Get(target)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", target, err)
	}
	return renderer, nil
}

func (o *Orchestrator) checkTypes(set model.RecordSet) error {
	for formType := range set {
		if !o.schemas.Has(formType) {
			return model.Errorf(model.ErrSchemaMismatch, "orchestrator", "form type has no schema").WithFormType(formType)
		}
	}
	return nil
}

func (o *Orchestrator) load() model.RecordSet {
	if current := o.records.Load(); current != nil {
		return *current
	}
	return nil
}

func (o *Orchestrator) store(set model.RecordSet) {
	o.records.Store(&set)
}
