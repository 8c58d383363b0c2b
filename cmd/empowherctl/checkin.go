package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	checkinCmd := &cobra.Command{Use: "checkin", Short: "Check-in operations"}

	var (
		user    string
		journal string
		mood    int
		energy  string
		stress  string
		phq2Q1  int
		phq2Q2  int
		gad2Q1  int
		gad2Q2  int
		who5Q1  int
		who5Q2  int
		who5Q3  int
	)
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a daily check-in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user required")
			}
			payload := map[string]interface{}{}
			set := func(key string, v int) {
				if v >= 0 {
					payload[key] = v
				}
			}
			set("phq2_q1", phq2Q1)
			set("phq2_q2", phq2Q2)
			set("gad2_q1", gad2Q1)
			set("gad2_q2", gad2Q2)
			set("who5_q1", who5Q1)
			set("who5_q2", who5Q2)
			set("who5_q3", who5Q3)
			if mood >= 0 {
				payload["mood_score"] = mood
			}
			if energy != "" {
				payload["energy_level"] = energy
			}
			if stress != "" {
				payload["stress_level"] = stress
			}
			if journal != "" {
				payload["journal"] = journal
			}

			data, err := doPost(fmt.Sprintf("/v0/users/%s/checkins", user), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	submitCmd.Flags().StringVarP(&user, "user", "u", "", "User ID (required)")
	submitCmd.Flags().StringVarP(&journal, "journal", "j", "", "Journal text")
	submitCmd.Flags().IntVar(&mood, "mood", -1, "Mood score 1-10 (legacy shape)")
	submitCmd.Flags().StringVar(&energy, "energy", "", "Energy level: low|medium|high")
	submitCmd.Flags().StringVar(&stress, "stress", "", "Stress level: low|medium|high")
	submitCmd.Flags().IntVar(&phq2Q1, "phq2-q1", -1, "PHQ-2 item 1 (0-3)")
	submitCmd.Flags().IntVar(&phq2Q2, "phq2-q2", -1, "PHQ-2 item 2 (0-3)")
	submitCmd.Flags().IntVar(&gad2Q1, "gad2-q1", -1, "GAD-2 item 1 (0-3)")
	submitCmd.Flags().IntVar(&gad2Q2, "gad2-q2", -1, "GAD-2 item 2 (0-3)")
	submitCmd.Flags().IntVar(&who5Q1, "who5-q1", -1, "WHO-5 item 1 (0-5)")
	submitCmd.Flags().IntVar(&who5Q2, "who5-q2", -1, "WHO-5 item 2 (0-5)")
	submitCmd.Flags().IntVar(&who5Q3, "who5-q3", -1, "WHO-5 item 3 (0-5)")
	_ = submitCmd.MarkFlagRequired("user")
	checkinCmd.AddCommand(submitCmd)

	rootCmd.AddCommand(checkinCmd)
}
