// Package cli implements the budgetdesk command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/budgetdesk/budgetdesk/internal/app"
)

var version = "dev"

type runtimeKey struct{}

// runtime is resolved once per invocation by the root command.
type runtime struct {
	cfg    *app.Config
	logger *slog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "budgetdesk",
		Short: "Project finance reporting service",
		Long: `budgetdesk aggregates project budgets, supplier invoices and closing
documents into plan/fact financial reports.

Configuration is read from the environment (and a .env file when present).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rt := &runtime{cfg: cfg, logger: app.NewLogger(cfg)}
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, rt))
			return nil
		},
	}
	root.AddCommand(
		newServeCommand(),
		newWorkerCommand(),
		newMigrateCommand(),
		newExportCommand(),
		newSeedCommand(),
	)
	return root
}

// Execute runs the root command and logs a failure.
func Execute(ctx context.Context) error {
	cmd := NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		slog.Default().Error("command failed", slog.Any("error", err))
	}
	return err
}

func runtimeFrom(cmd *cobra.Command) (*runtime, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("cli: runtime not initialised")
	}
	return rt, nil
}
