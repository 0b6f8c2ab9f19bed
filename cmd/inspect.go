// -- cmd/inspect.go --
package cmd

import (
	"context"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/config"
	"github.com/bimgrid/ifcpanel-cli/internal/observability"
	"github.com/bimgrid/ifcpanel-cli/internal/provider"
	"github.com/bimgrid/ifcpanel-cli/internal/resolve"
	"github.com/bimgrid/ifcpanel-cli/internal/selection"
)

// newInspectCmd creates and configures the `inspect` command.
func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect [model[:id,id,...]...]",
		Short: "Resolves selected elements from loader dumps and prints their panel views",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so command-line values override config and env.
			if err := viper.BindPFlag("provider.dumps", cmd.Flags().Lookup("dump")); err != nil {
				return err
			}
			return viper.BindPFlag("resolver.concurrency", cmd.Flags().Lookup("concurrency"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			views, err := resolveArgs(ctx, cfg, args, logger)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			return writeViews(views, output)
		},
	}

	inspectCmd.Flags().StringSliceP("dump", "D", nil, "Loader dump file (JSON or XML). Repeatable. (Overrides config/env)")
	inspectCmd.Flags().IntP("concurrency", "j", 0, "Concurrent bundle fetches per batch. (Overrides config/env)")
	inspectCmd.Flags().StringP("output", "o", "", "Output file path. If unset, views are printed to stdout.")

	return inspectCmd
}

// resolveArgs loads the configured provider and resolves the selection the
// arguments describe. Without arguments every element of every loaded model
// is resolved, which only the file provider can enumerate.
func resolveArgs(ctx context.Context, cfg config.Config, args []string, logger *zap.Logger) ([]schemas.ElementViewModel, error) {
	sel, wholeModels, err := parseSelection(args)
	if err != nil {
		return nil, err
	}

	prov, err := newProvider(cfg.Provider, logger)
	if err != nil {
		return nil, err
	}

	fp, isFile := prov.(*provider.FileProvider)
	if len(args) == 0 {
		if !isFile {
			return nil, fmt.Errorf("an explicit model:id selection is required in http mode")
		}
		wholeModels = fp.ModelIDs()
	}
	if len(wholeModels) > 0 {
		if !isFile {
			return nil, fmt.Errorf("whole-model selection requires file mode; use model:id,id in http mode")
		}
		if err := expandWholeModels(sel, wholeModels, fp); err != nil {
			return nil, err
		}
	}

	engine := selection.New(prov, resolve.New(logger), logger,
		selection.WithConcurrency(cfg.Resolver.Concurrency))
	return engine.Select(ctx, sel)
}

// writeViews marshals panel views as indented JSON to the given path, or to
// stdout when the path is empty.
func writeViews(views []schemas.ElementViewModel, output string) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode views: %w", err)
	}
	data = append(data, '\n')
	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}
