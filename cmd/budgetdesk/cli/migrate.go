package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/budgetdesk/budgetdesk/internal/platform/db"
)

func newMigrateCommand() *cobra.Command {
	var down int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		Example: `  budgetdesk migrate
  budgetdesk migrate --down 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("down") {
				if err := db.MigrateDown(rt.cfg.PGDSN, down); err != nil {
					return err
				}
				rt.logger.Info("migrations rolled back", slog.Int("steps", down))
				return nil
			}
			return rt.migrateUp()
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "roll back this many migrations instead of applying")
	return cmd
}

func (rt *runtime) migrateUp() error {
	if err := db.Migrate(rt.cfg.PGDSN); err != nil {
		return err
	}
	rt.logger.Info("migrations applied")
	return nil
}
