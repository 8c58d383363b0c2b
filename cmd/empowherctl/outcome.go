package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var (
		user      string
		decision  string
		action    string
		completed bool
		rating    int
		minutes   int
	)
	outcomeCmd := &cobra.Command{
		Use:   "outcome",
		Short: "Record feedback on a past intervention",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || decision == "" || action == "" {
				return fmt.Errorf("--user, --decision and --action required")
			}
			payload := map[string]interface{}{
				"decisionId": decision,
				"action":     action,
				"completed":  completed,
			}
			if rating > 0 {
				payload["rating"] = rating
			}
			if minutes > 0 {
				payload["timeToComplete"] = minutes
			}
			data, err := doPost(fmt.Sprintf("/v0/users/%s/outcomes", user), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	outcomeCmd.Flags().StringVarP(&user, "user", "u", "", "User ID (required)")
	outcomeCmd.Flags().StringVarP(&decision, "decision", "d", "", "Decision ID the feedback refers to (required)")
	outcomeCmd.Flags().StringVar(&action, "action", "", "Intervention type that was attempted (required)")
	outcomeCmd.Flags().BoolVarP(&completed, "completed", "c", false, "Whether the intervention was completed")
	outcomeCmd.Flags().IntVarP(&rating, "rating", "r", 0, "Rating 1-5")
	outcomeCmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Minutes to complete")
	rootCmd.AddCommand(outcomeCmd)
}
