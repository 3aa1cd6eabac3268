package cmd

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	listingsLimit  int
	listingsStatus string
)

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Show generated listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		listings, err := appInstance.ListingStore.ListListings(ctx, listingsLimit, 0, listingsStatus)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"ID", "Folder", "Title", "Collection", "Score", "Status"})
		for _, l := range listings {
			table.Append([]string{
				strconv.FormatInt(l.ID, 10),
				l.FolderPath,
				l.Title,
				l.CollectionName,
				strconv.Itoa(l.OverallScore),
				l.Status,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	listingsCmd.Flags().IntVar(&listingsLimit, "limit", 50, "number of listings to show")
	listingsCmd.Flags().StringVar(&listingsStatus, "status", "", "filter by status (e.g. published, review, reject)")
	rootCmd.AddCommand(listingsCmd)
}
