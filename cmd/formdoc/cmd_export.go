package main

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formdoc/pkg/render"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		all     bool
		backend string
		outDir  string
	)
	cmd := &cobra.Command{
		Use:   "export [TYPE...]",
		Short: "Export forms as files through a backend",
		Long: `Export renders view-mode snapshots of the named forms, or every form with
--all, concurrently. Each lands in OUT/<type>.<ext>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			types := args
			if all {
				types = orch.Types()
			}
			if len(types) == 0 {
				return errors.New("name at least one form type or pass --all")
			}
			if backend == "" {
				backend = a.cfg.Export.Backend
			}
			if outDir == "" {
				outDir = a.cfg.Export.OutDir
			}
			renderer, err := orch.Renderers().Get(backend)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			written := make([]string, len(types))
			g, ctx := errgroup.WithContext(cmd.Context())
			for idx, formType := range types {
				g.Go(func() error {
					job, err := orch.Export(ctx, formType, backend)
					if err != nil {
						return err
					}
					out, err := job.Wait(ctx)
					if err != nil {
						return err
					}
					path := filepath.Join(outDir, formType+"."+render.Extension(renderer))
					if err := os.WriteFile(path, out, 0o644); err != nil {
						return err
					}
					a.logger.Debug("exported", zap.String("form_type", formType), zap.String("job", job.ID()), zap.String("path", path))
					written[idx] = path
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			sort.Strings(written)
			for _, path := range written {
				a.printf("wrote %s\n", path)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&all, "all", false, "export every form type")
	flags.StringVarP(&backend, "backend", "b", "", "renderer backend (defaults to export.backend)")
	flags.StringVarP(&outDir, "out", "o", "", "output directory (defaults to export.outDir)")
	return cmd
}
