package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"listforge/internal/models"
	"listforge/internal/shopify"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Manage the human review queue",
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List listings waiting for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		items, err := appInstance.ReviewStore.ListPendingReviews(ctx, 100)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("Review queue is empty.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Listing", "Title", "Collection", "Score", "Reason"})
		for _, item := range items {
			listing, err := appInstance.ListingStore.GetListing(ctx, item.ListingID)
			if err != nil {
				return fmt.Errorf("load listing %d: %w", item.ListingID, err)
			}
			table.Append([]string{
				strconv.FormatInt(item.ID, 10),
				strconv.FormatInt(listing.ID, 10),
				listing.Title,
				listing.CollectionName,
				strconv.Itoa(listing.OverallScore),
				item.Reason,
			})
		}
		table.Render()
		return nil
	},
}

var reviewApproveCmd = &cobra.Command{
	Use:   "approve <review-id>",
	Short: "Approve a queued listing and publish it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid review id %q", args[0])
		}

		item, err := appInstance.ReviewStore.GetReviewItem(ctx, id)
		if err != nil {
			return err
		}
		listing, err := appInstance.ListingStore.GetListing(ctx, item.ListingID)
		if err != nil {
			return err
		}

		shopifyID, err := appInstance.Shopify.CreateProduct(ctx, shopify.ProductInput{
			Title:           listing.Title,
			DescriptionHTML: listing.DescriptionHTML,
			ProductType:     listing.ProductType,
			Tags:            listing.Tags,
			SEODescription:  listing.MetaDescription,
		})
		if err != nil {
			return fmt.Errorf("publish listing %d: %w", listing.ID, err)
		}

		if err := appInstance.ListingStore.UpdateListingStatus(ctx, listing.ID, models.ListingStatusPublished, &shopifyID); err != nil {
			return err
		}
		if err := appInstance.ReviewStore.ResolveReviewItem(ctx, id, "approved"); err != nil {
			return err
		}

		color.Green("Published listing %d (%s) as %s", listing.ID, listing.Title, shopifyID)
		return nil
	},
}

var reviewDiscardCmd = &cobra.Command{
	Use:   "discard <review-id>",
	Short: "Discard a queued listing without publishing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid review id %q", args[0])
		}

		item, err := appInstance.ReviewStore.GetReviewItem(ctx, id)
		if err != nil {
			return err
		}
		if err := appInstance.ListingStore.UpdateListingStatus(ctx, item.ListingID, models.ListingStatusReject, nil); err != nil {
			return err
		}
		if err := appInstance.ReviewStore.ResolveReviewItem(ctx, id, "discarded"); err != nil {
			return err
		}

		color.Yellow("Discarded review %d (listing %d)", id, item.ListingID)
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewApproveCmd)
	reviewCmd.AddCommand(reviewDiscardCmd)
	rootCmd.AddCommand(reviewCmd)
}
