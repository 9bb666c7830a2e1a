package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var jobsFlags struct {
	failedLimit  int64
	cleanupHours int
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List in-flight generation jobs and recent failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		active, err := GetStore().ListActive(ctx)
		if err != nil {
			return err
		}
		failed, err := GetStore().ListFailed(ctx, jobsFlags.failedLimit)
		if err != nil {
			return err
		}

		if len(active) == 0 && len(failed) == 0 {
			fmt.Println("No active jobs, no recent failures.")
			return nil
		}
		for _, j := range active {
			prompt := j.Prompt
			if len(prompt) > 60 {
				prompt = prompt[:59] + "…"
			}
			fmt.Printf("#%-5d %-8s %-24s %s\n", j.ID, j.Status, j.Model, prompt)
		}
		for _, j := range failed {
			fmt.Printf("#%-5d failed   %-24s %s\n", j.ID, j.Model, j.Error)
		}
		return nil
	},
}

var jobsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Fail stalled jobs and delete old finished ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		stalled, err := GetStore().CleanupStalled(ctx)
		if err != nil {
			return err
		}
		removed, err := GetStore().CleanupOld(ctx, jobsFlags.cleanupHours)
		if err != nil {
			return err
		}
		fmt.Printf("Failed %d stalled job(s), removed %d old job(s)\n", stalled, removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsCleanupCmd)

	jobsCmd.Flags().Int64Var(&jobsFlags.failedLimit, "failed-limit", 10, "maximum recent failures to show")
	jobsCleanupCmd.Flags().IntVar(&jobsFlags.cleanupHours, "older-than", 24, "delete finished jobs older than this many hours")
}
