package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"parking-planner-service/internal/config"
	"parking-planner-service/internal/platform/logging"
)

// cli carries state shared by subcommands. It is filled in by the root
// command's PersistentPreRunE.
type cli struct {
	cfgPath string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Parking itinerary planner tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load(c.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.cfg = cfg
			// stdout is reserved for command output.
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.AppEnv, cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.cfgPath, "config", "c", "", "configuration file (yaml)")

	root.AddCommand(newInitDBCmd(c), newSeedCmd(c), newFacilitiesCmd(c), newPlanCmd(c))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
