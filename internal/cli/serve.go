package cli

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"safereturn/internal/app"
	"safereturn/internal/platform/config"
	"safereturn/internal/platform/httpserver"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, cmd, seedPath)
		},
	}
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file loaded before serving")
	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, cmd *cobra.Command, seedPath string) error {
	log := opts.logger(cmd)
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.Log.Level != "" && !cmd.Flags().Changed("log-level") {
		opts.LogLevel = cfg.Log.Level
		log = opts.logger(cmd)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close resources", "error", err)
		}
	}()

	if seedPath != "" {
		f, err := app.LoadSeedFile(seedPath)
		if err != nil {
			return err
		}
		res, err := app.Seed(ctx, a.FollowUp, f)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "seed loaded", "profiles", res.Profiles, "checkins", res.CheckIns, "tickets", res.Tickets)
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}
	srv := httpserver.New(cfg.Server, a.Router)
	return httpserver.Run(ctx, srv, ln, cfg.Server.ShutdownTimeout, log)
}
