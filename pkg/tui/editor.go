package tui

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/codec"
	"github.com/goliatone/go-formdoc/pkg/engine"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
)

// Row actions offered for list entries and validation rows.
const (
	actionKeep = iota
	actionEdit
	actionRemove
)

var rowActions = []string{"Keep", "Edit", "Remove"}

var limitLabels = map[model.Limit]string{
	model.LimitUpper: "Upper Limit",
	model.LimitLower: "Lower Limit",
}

type Option func(*Editor)

// WithPromptDriver swaps the terminal driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithLogger sets the logger used to trace applied edits.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSubset limits the walk to the selected fields.
func WithSubset(subset render.FieldSubset) Option {
	return func(e *Editor) {
		e.subset = subset
	}
}

// Editor walks a form field by field and turns every answer into an edit
// intent applied through the engine. Answers equal to the current value
// produce no intent.
type Editor struct {
	driver PromptDriver
	logger *zap.Logger
	subset render.FieldSubset
}

// New returns an editor backed by the survey driver unless another driver is
// supplied.
func New(options ...Option) *Editor {
	e := &Editor{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(nil)
	}
	return e
}

// Edit prompts for every field of record and returns the edited record. The
// input record is never modified. On error the record edited so far is
// returned with it.
func (e *Editor) Edit(ctx context.Context, s model.FormSchema, record model.FormRecord) (model.FormRecord, error) {
	if e.driver == nil {
		return record, ErrNoDriver
	}
	doc, err := render.NewDocumentMode(s, record, model.ModeEdit)
	if err != nil {
		return record, err
	}
	doc = render.ApplySubset(doc, e.subset)

	sess := &session{ctx: ctx, driver: e.driver, logger: e.logger, schema: s, record: record}
	if err := sess.info("%s  %s", doc.FormID, doc.Title); err != nil {
		return record, err
	}
	for _, section := range doc.Sections() {
		if section.Title != "" {
			if err := sess.info("== %s ==", section.Title); err != nil {
				return sess.record, err
			}
		}
		for _, inst := range section.Fields {
			if err := sess.field(inst); err != nil {
				return sess.record, fmt.Errorf("tui: edit %s: %w", inst.Key, err)
			}
		}
	}
	return sess.record, nil
}

type session struct {
	ctx    context.Context
	driver PromptDriver
	logger *zap.Logger
	schema model.FormSchema
	record model.FormRecord
	edits  int
}

func (s *session) info(format string, args ...any) error {
	return s.driver.Info(s.ctx, fmt.Sprintf(format, args...))
}

func (s *session) apply(key string, op model.EditOp, path model.Path, value any) error {
	intent := model.EditIntent{
		FormType: s.schema.Type,
		FieldKey: key,
		Op:       op,
		Path:     path,
		NewValue: value,
	}
	next, err := engine.ApplyIntent(s.schema, s.record, intent)
	if err != nil {
		return err
	}
	s.record = next
	s.edits++
	s.logger.Debug("applied edit", zap.Stringer("intent", intent), zap.Int("edits", s.edits))
	return nil
}

func (s *session) field(inst engine.RenderInstruction) error {
	switch inst.Kind {
	case model.KindScalar:
		return s.scalar(inst)
	case model.KindScalarMultiline:
		return s.multiline(inst)
	case model.KindStringList:
		return s.list(inst)
	case model.KindKeyedScalarMap, model.KindKeyValueRow:
		return s.items(inst)
	case model.KindBooleanFlagSet:
		return s.flags(inst)
	case model.KindValidationTable:
		return s.table(inst)
	}
	return model.Errorf(model.ErrSchemaMismatch, "tui", "unsupported kind %q", inst.Kind).WithField(inst.Key)
}

func (s *session) scalar(inst engine.RenderInstruction) error {
	answer, err := s.driver.Input(s.ctx, InputConfig{Message: inst.Label, Default: inst.Display.Text, Help: inst.Help})
	if err != nil {
		return err
	}
	if answer == inst.Display.Text {
		return nil
	}
	return s.apply(inst.Key, model.OpSet, model.Path{}, answer)
}

func (s *session) multiline(inst engine.RenderInstruction) error {
	current := inst.Display.Text
	answer, err := s.driver.TextArea(s.ctx, TextAreaConfig{Message: inst.Label, Default: current, Help: inst.Help})
	if err != nil {
		return err
	}
	if answer == current {
		return nil
	}
	return s.apply(inst.Key, model.OpSet, model.Path{}, answer)
}

// list offers keep/edit/remove per entry, then repeats an add prompt until
// declined. Removals shift later entries down, tracked by removed.
func (s *session) list(inst engine.RenderInstruction) error {
	removed := 0
	for idx, line := range inst.Display.Lines {
		pos := idx - removed
		action, err := s.driver.Select(s.ctx, SelectConfig{
			Message: fmt.Sprintf("%s %d: %s", inst.Label, idx+1, line),
			Options: rowActions,
		})
		if err != nil {
			return err
		}
		switch action {
		case actionEdit:
			answer, err := s.driver.Input(s.ctx, InputConfig{Message: fmt.Sprintf("%s %d", inst.Label, idx+1), Default: line})
			if err != nil {
				return err
			}
			if answer != line {
				if err := s.apply(inst.Key, model.OpSet, model.IndexPath(pos), answer); err != nil {
					return err
				}
			}
		case actionRemove:
			if err := s.apply(inst.Key, model.OpRemove, model.IndexPath(pos), nil); err != nil {
				return err
			}
			removed++
		}
	}

	for {
		more, err := s.driver.Confirm(s.ctx, ConfirmConfig{Message: fmt.Sprintf("Add to %s?", inst.Label)})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		answer, err := s.driver.Input(s.ctx, InputConfig{Message: fmt.Sprintf("New %s", inst.Label)})
		if err != nil {
			return err
		}
		if err := s.apply(inst.Key, model.OpInsert, model.Path{}, answer); err != nil {
			return err
		}
	}
}

func (s *session) items(inst engine.RenderInstruction) error {
	for _, item := range inst.Display.Items {
		answer, err := s.driver.Input(s.ctx, InputConfig{
			Message: fmt.Sprintf("%s: %s", inst.Label, item.Label),
			Default: item.Value,
		})
		if err != nil {
			return err
		}
		if answer == item.Value {
			continue
		}
		if err := s.apply(inst.Key, model.OpSet, model.KeyPath(item.Key), answer); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) flags(inst engine.RenderInstruction) error {
	checks := inst.Display.Checks
	options := make([]string, len(checks))
	var defaults []int
	for idx, check := range checks {
		options[idx] = check.Label
		if check.Checked {
			defaults = append(defaults, idx)
		}
	}
	picked, err := s.driver.MultiSelect(s.ctx, SelectConfig{
		Message:  inst.Label,
		Options:  options,
		Defaults: defaults,
		Help:     inst.Help,
		PageSize: len(options),
	})
	if err != nil {
		return err
	}
	selected := make(map[int]bool, len(picked))
	for _, idx := range picked {
		selected[idx] = true
	}
	for idx, check := range checks {
		if selected[idx] == check.Checked {
			continue
		}
		if err := s.apply(inst.Key, model.OpSet, model.KeyPath(check.Name), selected[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) table(inst engine.RenderInstruction) error {
	removed := map[model.Limit]int{}
	count := map[model.Limit]int{}
	for _, row := range inst.Display.Rows {
		count[row.Limit]++
		pos := row.Index - removed[row.Limit]
		action, err := s.driver.Select(s.ctx, SelectConfig{
			Message: fmt.Sprintf("%s row %d: %s", limitLabels[row.Limit], row.Index+1, rowSummary(row)),
			Options: rowActions,
		})
		if err != nil {
			return err
		}
		switch action {
		case actionEdit:
			if err := s.cells(inst.Key, row.Limit, pos, row); err != nil {
				return err
			}
		case actionRemove:
			if err := s.apply(inst.Key, model.OpRemoveRow, model.RowPath(row.Limit, pos, ""), nil); err != nil {
				return err
			}
			removed[row.Limit]++
			count[row.Limit]--
		}
	}

	for _, limit := range []model.Limit{model.LimitUpper, model.LimitLower} {
		for {
			more, err := s.driver.Confirm(s.ctx, ConfirmConfig{Message: fmt.Sprintf("Add %s row?", limitLabels[limit])})
			if err != nil {
				return err
			}
			if !more {
				break
			}
			if err := s.apply(inst.Key, model.OpAddRow, model.Path{Limit: limit}, nil); err != nil {
				return err
			}
			if err := s.cells(inst.Key, limit, count[limit], codec.Row{Limit: limit}); err != nil {
				return err
			}
			count[limit]++
		}
	}
	return nil
}

func (s *session) cells(key string, limit model.Limit, pos int, row codec.Row) error {
	columns := []struct {
		column  model.Column
		label   string
		current string
	}{
		{model.ColumnContinuous, "Continuous", row.Continuous},
		{model.ColumnDiscrete, "Discrete", row.Discrete},
		{model.ColumnMeaning, "Meaning", row.Meaning},
	}
	for _, col := range columns {
		answer, err := s.driver.Input(s.ctx, InputConfig{
			Message: fmt.Sprintf("%s %d %s", limitLabels[limit], pos+1, col.label),
			Default: col.current,
		})
		if err != nil {
			return err
		}
		if answer == col.current {
			continue
		}
		if err := s.apply(key, model.OpSet, model.RowPath(limit, pos, col.column), answer); err != nil {
			return err
		}
	}
	return nil
}

func rowSummary(row codec.Row) string {
	var parts []string
	for _, value := range []string{row.Continuous, row.Discrete, row.Meaning} {
		if value != "" {
			parts = append(parts, value)
		}
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, " / ")
}
