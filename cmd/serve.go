// -- cmd/serve.go --
package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimgrid/ifcpanel-cli/internal/config"
	"github.com/bimgrid/ifcpanel-cli/internal/ghost"
	"github.com/bimgrid/ifcpanel-cli/internal/ifcmodel"
	"github.com/bimgrid/ifcpanel-cli/internal/observability"
	"github.com/bimgrid/ifcpanel-cli/internal/resolve"
	"github.com/bimgrid/ifcpanel-cli/internal/selection"
	"github.com/bimgrid/ifcpanel-cli/internal/server"
)

// newServeCmd creates and configures the `serve` command.
func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the panel API: selection resolution, model registry and ghost mode over HTTP",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
				return err
			}
			return viper.BindPFlag("provider.dumps", cmd.Flags().Lookup("dump"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			prov, err := newProvider(cfg.Provider, logger)
			if err != nil {
				return err
			}

			ghostColor, err := cfg.Ghost.ColorHex()
			if err != nil {
				return err
			}

			registry := ifcmodel.NewRegistry(logger)
			ghostEngine := ghost.New(registry, logger,
				ghost.WithAppearance(ghostColor, cfg.Ghost.Opacity))
			engine := selection.New(prov, resolve.New(logger), logger,
				selection.WithConcurrency(cfg.Resolver.Concurrency))

			srv := server.New(cfg.Server, engine, registry, ghostEngine, logger)

			// Serve until the process receives an interrupt or termination
			// signal.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	serveCmd.Flags().String("addr", "", "Listen address, e.g. :8087. (Overrides config/env)")
	serveCmd.Flags().StringSliceP("dump", "D", nil, "Loader dump file (JSON or XML). Repeatable. (Overrides config/env)")

	return serveCmd
}
