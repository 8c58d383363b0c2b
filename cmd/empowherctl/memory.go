package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	memoryCmd := &cobra.Command{
		Use:   "memory USER_ID",
		Short: "Show a user's memory snapshot (stage, trend, engagement)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("/v0/users/%s/memory", args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	rootCmd.AddCommand(memoryCmd)

	var limit, offset int
	decisionsCmd := &cobra.Command{
		Use:   "decisions USER_ID",
		Short: "List agent decisions for a user, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("/v0/users/%s/decisions?limit=%d&offset=%d", args[0], limit, offset))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	decisionsCmd.Flags().IntVarP(&limit, "limit", "l", 20, "Page size")
	decisionsCmd.Flags().IntVarP(&offset, "offset", "o", 0, "Page offset")
	rootCmd.AddCommand(decisionsCmd)

	analyticsCmd := &cobra.Command{
		Use:   "analytics USER_ID",
		Short: "Show per-action intervention analytics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("/v0/users/%s/analytics/interventions", args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	rootCmd.AddCommand(analyticsCmd)

	instrumentsCmd := &cobra.Command{
		Use:   "instruments",
		Short: "Show the screening instrument catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/v0/instruments")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	rootCmd.AddCommand(instrumentsCmd)
}
