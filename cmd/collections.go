package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Show the configured collection catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Name", "Keywords", "Required Tags", "Boost"})
		for _, coll := range appInstance.Config.Catalog.Collections {
			boost := coll.Boost
			if boost == 0 {
				boost = 1.0
			}
			table.Append([]string{
				coll.ID,
				coll.Name,
				strings.Join(coll.Keywords, ", "),
				strings.Join(coll.TagsRequired, ", "),
				strconv.FormatFloat(boost, 'f', 1, 64),
			})
		}
		table.Render()

		th := appInstance.Config.Scoring.Thresholds
		fmt.Printf("Thresholds: auto_publish=%d quarantine=%d reject=%d\n",
			th.AutoPublish, th.Quarantine, th.Reject)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}
