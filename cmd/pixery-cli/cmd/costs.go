package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pixery/internal/domain"
)

var costsSince string

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Summarize estimated API spend",
	Long: `Summarize estimated API spend: total, per model, and per day.

Examples:
  pixery-cli costs
  pixery-cli costs --since 7d
  pixery-cli costs --since 2026-08-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		since := ""
		if costsSince != "" {
			parsed, err := domain.ParseSince(costsSince, time.Now())
			if err != nil {
				return err
			}
			since = parsed
		}

		sum, err := GetStore().CostSummary(context.Background(), since)
		if err != nil {
			return err
		}

		fmt.Printf("Total: $%.2f across %d generation(s)\n", sum.TotalUSD, sum.Count)
		if len(sum.ByModel) > 0 {
			fmt.Println("\nBy model:")
			for _, b := range sum.ByModel {
				fmt.Printf("  %-28s $%.2f\n", b.Key, b.USD)
			}
		}
		if len(sum.ByDay) > 0 {
			fmt.Println("\nBy day:")
			for _, b := range sum.ByDay {
				fmt.Printf("  %s  $%.2f\n", b.Key, b.USD)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(costsCmd)
	costsCmd.Flags().StringVar(&costsSince, "since", "", "date window: today, 7d, 2w, or YYYY-MM-DD")
}
