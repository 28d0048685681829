package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdoc/pkg/bridge"
	"github.com/goliatone/go-formdoc/pkg/openapi"
	"github.com/goliatone/go-formdoc/pkg/sample"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

func (a *app) schemas() (*schema.Registry, error) {
	if dir := a.cfg.Schema.Dir; dir != "" {
		return schema.LoadFS(os.DirFS(dir))
	}
	return schema.Default()
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check a record set file against the form schemas",
		Long: `Validate checks the JSON shape against the OpenAPI record set schema, then
decodes it the same way the editor does. FILE defaults to the data file, or the
bundled sample when none is configured.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Data.Path
			if len(args) == 1 {
				path = args[0]
			}
			data := sample.JSON()
			name := "sample"
			if path != "" {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				data, name = raw, path
			}

			reg, err := a.schemas()
			if err != nil {
				return err
			}
			doc, err := openapi.Describe(reg)
			if err != nil {
				return err
			}
			if err := openapi.ValidateRecordSetJSON(doc, data); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			set, err := bridge.Deserialize(reg, data)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			a.printf("%s: ok (%d records)\n", name, len(set))
			return nil
		},
	}
}

func (a *app) schemaCmd() *cobra.Command {
	var (
		format string
		server string
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the OpenAPI document describing the record set and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.schemas()
			if err != nil {
				return err
			}
			var options []openapi.Option
			if server != "" {
				options = append(options, openapi.WithServerURL(server))
			}
			doc, err := openapi.Describe(reg, options...)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			switch format {
			case "json":
			case "yaml":
				if data, err = jsonToYAML(data); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q, want json or yaml", format)
			}
			return a.emit(data, "")
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	cmd.Flags().StringVar(&server, "server", "", "server URL to list in the document")
	return cmd
}

// jsonToYAML re-encodes JSON as block-style YAML, keeping key order.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

// blockStyle drops the flow and quoting styles JSON input carries. Strings
// that would read back as another type stay quoted.
func blockStyle(node *yaml.Node) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!str" || !ambiguous(node.Value) {
			node.Style = 0
		}
	default:
		node.Style = 0
	}
	for _, child := range node.Content {
		blockStyle(child)
	}
}

func ambiguous(value string) bool {
	switch strings.ToLower(value) {
	case "", "~", "null", "true", "false", "yes", "no", "on", "off", "y", "n":
		return true
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}
