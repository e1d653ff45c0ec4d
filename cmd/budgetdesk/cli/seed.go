package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/budgetdesk/budgetdesk/internal/seed"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo department, project, suppliers and invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			pool, err := rt.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			ds := seed.Demo(time.Now().UTC())
			if err := seed.Apply(cmd.Context(), pool, ds); err != nil {
				return err
			}
			rt.logger.Info("demo data seeded", slog.String("project_id", ds.Project.ID))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ds.Project.ID)
			return err
		},
	}
}
