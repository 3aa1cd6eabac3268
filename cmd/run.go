package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runEnqueue bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan storage and process product folders",
	Long: `Scans the configured storage prefix for unprocessed product folders and
runs the listing pipeline over each one. With --enqueue, folders are handed
to the background worker queue instead of being processed inline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		if runEnqueue {
			enqueued, err := appInstance.Pipeline.EnqueueScan(ctx, appInstance.JobClient)
			if err != nil {
				return err
			}
			fmt.Printf("Enqueued %d product jobs\n", enqueued)
			return nil
		}

		run, err := appInstance.Pipeline.RunOnce(ctx, "manual")
		if err != nil {
			return err
		}
		fmt.Printf("Run %s: %d folders, %d processed, %d published, %d queued for review, %d rejected, %d failed\n",
			run.RunID, run.FoldersSeen, run.Processed, run.Published, run.Queued, run.Rejected, run.Failed)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runEnqueue, "enqueue", false, "enqueue product jobs instead of processing inline")
	rootCmd.AddCommand(runCmd)
}
