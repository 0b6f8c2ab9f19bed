// -- cmd/validate.go --
package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/config"
	"github.com/bimgrid/ifcpanel-cli/internal/observability"
	"github.com/bimgrid/ifcpanel-cli/internal/store"
	"github.com/bimgrid/ifcpanel-cli/internal/validation"
)

// newValidateCmd creates and configures the `validate` command.
func newValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate [model[:id,id,...]...]",
		Short: "Checks resolved elements against a rule file and reports pass/fail results",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("provider.dumps", cmd.Flags().Lookup("dump")); err != nil {
				return err
			}
			return viper.BindPFlag("database.url", cmd.Flags().Lookup("database-url"))
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

			rulesPath, _ := cmd.Flags().GetString("rules")
			rules, err := validation.LoadRules(rulesPath)
			if err != nil {
				return err
			}

			views, err := resolveArgs(ctx, cfg, args, logger)
			if err != nil {
				return err
			}

			runID := uuid.New().String()
			report := validation.Evaluate(runID, rules, views)
			summary := report.Summarize()

			printReport(cmd, report, summary)

			persist, _ := cmd.Flags().GetBool("persist")
			if persist {
				if err := persistRun(ctx, cfg, runID, views, report, logger); err != nil {
					return err
				}
				cmd.Printf("Run %s persisted.\n", runID)
			}

			if critical := summary.ByLevel[validation.LevelCritical]; critical > 0 {
				return fmt.Errorf("%d critical check(s) failed", critical)
			}
			return nil
		},
	}

	validateCmd.Flags().StringP("rules", "r", "rules.json", "Rule file (JSON) describing the checks to run.")
	validateCmd.Flags().StringSliceP("dump", "D", nil, "Loader dump file (JSON or XML). Repeatable. (Overrides config/env)")
	validateCmd.Flags().Bool("persist", false, "Persist resolved views and results to the configured database.")
	validateCmd.Flags().String("database-url", "", "Database connection URL. (Overrides config/env)")

	return validateCmd
}

// printReport writes one line per check plus a totals footer.
func printReport(cmd *cobra.Command, report *validation.Report, summary validation.Summary) {
	for _, res := range report.Results {
		marker := "PASS"
		if res.Status == validation.StatusFail {
			marker = fmt.Sprintf("FAIL/%s", res.Level)
		}
		cmd.Printf("[%s] %s %s: %s (expected %s, got %s)\n",
			marker, res.EntityType, res.ElementName, res.Check, res.Expected, res.Actual)
	}
	cmd.Printf("\n%d checks: %d passed, %d failed (%d info, %d warning, %d critical), pass rate %.1f%%\n",
		summary.Total, summary.Passed, summary.Failed,
		summary.ByLevel[validation.LevelInfo],
		summary.ByLevel[validation.LevelWarning],
		summary.ByLevel[validation.LevelCritical],
		summary.PassRate)
}

// persistRun stores the resolved views and the validation report under one
// run ID.
func persistRun(ctx context.Context, cfg config.Config, runID string, views []schemas.ElementViewModel, report *validation.Report, logger *zap.Logger) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("database URL is not configured (IFCPANEL_DATABASE_URL)")
	}
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	st := store.New(pool, logger)
	if err := st.PersistViews(ctx, runID, views); err != nil {
		return err
	}
	if err := st.PersistValidation(ctx, report); err != nil {
		return err
	}
	logger.Info("Validation run persisted",
		zap.String("runID", runID),
		zap.Int("views", len(views)),
		zap.Int("results", len(report.Results)))
	return nil
}
