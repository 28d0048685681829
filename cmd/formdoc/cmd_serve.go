package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formdoc/internal/server"
	"github.com/goliatone/go-formdoc/internal/watch"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr      string
		watchFile bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve forms, edit intents, exports and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if watchFile {
				a.cfg.Data.Watch = true
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			srv, err := server.New(orch,
				server.WithLogger(a.logger),
				server.WithGatherer(a.registry),
				server.WithPageBackend("html"),
			)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return srv.ListenAndServe(ctx, a.cfg.Server.Addr)
			})
			if a.cfg.Data.Watch {
				w, err := watch.New(a.cfg.Data.Path, orch,
					watch.WithDebounce(a.cfg.Data.Debounce),
					watch.WithLogger(a.logger),
				)
				if err != nil {
					return err
				}
				if data, err := os.ReadFile(a.cfg.Data.Path); err == nil {
					w.Prime(data)
				}
				g.Go(func() error {
					return w.Run(ctx)
				})
			}
			a.logger.Info("serving", zap.String("addr", a.cfg.Server.Addr), zap.Bool("watch", a.cfg.Data.Watch))
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().BoolVar(&watchFile, "watch", false, "reload the data file when it changes")
	return cmd
}
