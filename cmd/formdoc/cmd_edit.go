package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/tui"
)

func (a *app) applyCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "apply TYPE INTENT_JSON...",
		Short: "Apply edit intents to a form",
		Long: `Apply one or more JSON edit intents in order, for example

  formdoc apply A '{"fieldKey":"aliases","op":"insert","newValue":"Member No"}'

Every intent must succeed; nothing is saved otherwise. The updated record is
printed unless --write saves the whole set to the data file.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formType := args[0]
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			for idx, raw := range args[1:] {
				var intent model.EditIntent
				if err := json.Unmarshal([]byte(raw), &intent); err != nil {
					return model.Errorf(model.ErrParse, "apply", "intent %d: %v", idx+1, err)
				}
				if intent.FormType == "" {
					intent.FormType = formType
				}
				if intent.FormType != formType {
					return model.Errorf(model.ErrSchemaMismatch, "apply", "intent %d targets %q, not %q", idx+1, intent.FormType, formType)
				}
				if _, err := orch.Apply(intent); err != nil {
					return fmt.Errorf("intent %d: %w", idx+1, err)
				}
				a.logger.Debug("applied", zap.Stringer("intent", intent))
			}

			if write {
				return a.save(orch)
			}
			data, err := orch.RawRecord(formType)
			if err != nil {
				return err
			}
			return a.emit(data, "")
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "save the record set to the data file")
	return cmd
}

func (a *app) interactiveCmd() *cobra.Command {
	var (
		fields string
		write  bool
	)
	cmd := &cobra.Command{
		Use:     "interactive TYPE",
		Aliases: []string{"edit"},
		Short:   "Edit a form field by field in the terminal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formType := args[0]
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			s, err := orch.Schemas().Get(formType)
			if err != nil {
				return err
			}
			record, err := orch.Record(formType)
			if err != nil {
				return err
			}

			driver := a.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(a.stdout)
			}
			editor := tui.New(
				tui.WithPromptDriver(driver),
				tui.WithLogger(a.logger),
				tui.WithSubset(render.ParseSubset(fields)),
			)
			edited, err := editor.Edit(cmd.Context(), s, record)
			if err != nil {
				return err
			}
			if err := orch.Put(formType, edited); err != nil {
				return err
			}

			if write {
				return a.save(orch)
			}
			data, err := orch.RawRecord(formType)
			if err != nil {
				return err
			}
			return a.emit(data, "")
		},
	}
	cmd.Flags().StringVar(&fields, "fields", "", "only walk the matching fields")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "save the record set to the data file")
	return cmd
}
