package cmd

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		runs, err := appInstance.RunStore.ListRuns(ctx, historyLimit)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Run", "Trigger", "Folders", "Processed", "Published", "Review", "Rejected", "Failed", "Started"})
		for _, run := range runs {
			table.Append([]string{
				run.RunID.String()[:8],
				run.Trigger,
				strconv.Itoa(run.FoldersSeen),
				strconv.Itoa(run.Processed),
				strconv.Itoa(run.Published),
				strconv.Itoa(run.Queued),
				strconv.Itoa(run.Rejected),
				strconv.Itoa(run.Failed),
				run.StartedAt.Format("2006-01-02 15:04"),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
