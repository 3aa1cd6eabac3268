package cmd

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var jobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Show recorded background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		jobs, err := appInstance.JobStore.ListJobs(ctx, jobsLimit, 0)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Job", "Type", "Queue", "Status", "Folder", "Created"})
		for _, j := range jobs {
			folder := ""
			if j.FolderPath != nil {
				folder = *j.FolderPath
			}
			table.Append([]string{
				j.JobID.String()[:8],
				j.TaskType,
				j.Queue,
				j.Status,
				folder,
				j.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 50, "number of jobs to show")
	rootCmd.AddCommand(jobsCmd)
}
