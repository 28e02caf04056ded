package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"parking-planner-service/internal/adapters/repositories"
	"parking-planner-service/internal/app"
	"parking-planner-service/internal/domain"
)

// loadFacilities reads facilities from file when set, otherwise from the
// configured database. The returned store is nil in the file case.
func loadFacilities(ctx context.Context, c *cli, file string) (*repositories.StaticFacilityRepository, *app.Store, error) {
	if file != "" {
		records, err := repositories.ReadFacilityRecords(file)
		if err != nil {
			return nil, nil, err
		}
		fs := make([]domain.Facility, 0, len(records))
		for _, rec := range records {
			f, err := domain.NewFacility(rec)
			if err != nil {
				return nil, nil, err
			}
			fs = append(fs, f)
		}
		return repositories.NewStaticFacilityRepository(fs), nil, nil
	}

	store, err := app.OpenStore(ctx, c.cfg)
	if err != nil {
		return nil, nil, err
	}
	repo, err := store.LoadFacilities(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return repo, store, nil
}

func newFacilitiesCmd(c *cli) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "facilities",
		Short: "List loaded facilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := loadFacilities(cmd.Context(), c, file)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			fs, err := repo.ListFacilities(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE\tFREE HOURS")
			for _, f := range fs {
				price := f.RawPrice
				if !f.Price.Known() {
					price += " (unpriced)"
				}
				free := "-"
				if f.MaxFreeHours < domain.UnlimitedFreeHours {
					free = strconv.FormatFloat(f.MaxFreeHours, 'f', -1, 64)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, price, free)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&file, "facilities", "f", "", "read facilities from a dataset file instead of the database")
	return cmd
}
