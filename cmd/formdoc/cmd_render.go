package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List form types and their current records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			records := orch.Records()
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tFORM ID\tTITLE\tSCHEMA")
			for _, formType := range orch.Types() {
				record := records[formType]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", formType, record.FormID, record.Title, orch.Schemas().MustGet(formType).Name)
			}
			return tw.Flush()
		},
	}
}

func (a *app) renderCmd() *cobra.Command {
	var (
		mode    string
		backend string
		fields  string
		out     string
		pretty  bool
		style   string
	)
	cmd := &cobra.Command{
		Use:   "render TYPE",
		Short: "Render one form in view, edit or raw mode",
		Long: `Render one form through a backend. Raw mode prints the record JSON and
ignores --backend. --pretty styles markdown output for the terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formType := args[0]
			m, err := model.ParseMode(mode)
			if err != nil {
				return err
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			var output []byte
			if m == model.ModeRaw {
				output, err = orch.RawRecord(formType)
			} else {
				if backend == "" {
					backend = a.cfg.Export.Backend
				}
				opts := render.RenderOptions{Subset: render.ParseSubset(fields)}
				output, _, err = orch.Render(cmd.Context(), formType, m, backend, opts)
			}
			if err != nil {
				return err
			}

			if pretty {
				if backend != "markdown" {
					return fmt.Errorf("--pretty needs --backend markdown, got %q", backend)
				}
				styled, err := prettyMarkdown(string(output), style)
				if err != nil {
					return err
				}
				output = []byte(styled)
			}
			return a.emit(output, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&mode, "mode", "m", "view", "view, edit or raw")
	flags.StringVarP(&backend, "backend", "b", "", "renderer backend (defaults to export.backend)")
	flags.StringVar(&fields, "fields", "", `limit output, e.g. "name,section:Validation Criteria,kind:string-list"`)
	flags.StringVarP(&out, "out", "o", "", "write to a file instead of stdout")
	flags.BoolVar(&pretty, "pretty", false, "style markdown for the terminal")
	flags.StringVar(&style, "style", "auto", "glamour style: auto, dark, light or notty")
	return cmd
}

func prettyMarkdown(md, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(style))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown style: %w", err)
	}
	return renderer.Render(md)
}

// emit writes output to path, or stdout when path is empty.
func (a *app) emit(output []byte, path string) error {
	if path == "" {
		_, err := a.stdout.Write(output)
		if err == nil && !strings.HasSuffix(string(output), "\n") {
			_, err = a.stdout.Write([]byte("\n"))
		}
		return err
	}
	if err := os.WriteFile(path, output, 0o644); err != nil {
		return err
	}
	a.printf("wrote %s\n", path)
	return nil
}
