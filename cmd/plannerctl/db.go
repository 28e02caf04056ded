package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"parking-planner-service/internal/adapters/repositories"
	"parking-planner-service/internal/app"
)

func newInitDBCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.OpenStore(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", store.Driver)
			return nil
		},
	}
}

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Load facilities from a JSON or YAML dataset",
		Long:  "Upserts facilities by id. Without a file argument the configured seed_path is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfg.SeedPath
			if len(args) == 1 {
				path = args[0]
			}

			store, err := app.OpenStore(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := repositories.SeedFromFile(cmd.Context(), store.DB, store.Driver, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d facilities from %s\n", n, path)
			return nil
		},
	}
}
