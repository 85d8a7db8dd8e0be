package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"safereturn/internal/app"
	"safereturn/internal/platform/config"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Enroll profiles and replay check-ins from a YAML file",
		Long: `Enroll profiles and replay their check-ins through the normal submission
path, so tiers, tickets and notifications are produced exactly as for live
traffic. Requires DATABASE_URL; in-memory state would be lost on exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is required; use 'serve --seed %s' for in-memory runs", args[0])
			}
			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, rootOpts.logger(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := app.Seed(ctx, a.FollowUp, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d profiles, %d check-ins, %d tickets\n",
				res.Profiles, res.CheckIns, res.Tickets)
			return err
		},
	}
	return cmd
}
