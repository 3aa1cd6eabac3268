package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"listforge/internal/app"
	"listforge/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "listforge",
	Short: "Listforge product listing pipeline",
	Long: `Listforge scans cloud-storage folders for product photos, generates
e-commerce listing copy with AI collaborators, scores the result, and
publishes to Shopify when the listing clears the configured threshold.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd == rootCmd {
			return nil
		}

		// .env is optional; real deployments set env vars directly.
		if err := godotenv.Load(); err == nil {
			log.Debug("Loaded environment from .env")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appInstance, err := app.NewApp(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Custom context key type to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database and storage connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		if err := appInstance.ListingStore.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		fmt.Println("database: ok")

		if _, err := appInstance.Scanner.ListProductFolders(ctx); err != nil {
			return fmt.Errorf("storage listing failed: %w", err)
		}
		fmt.Println("storage: ok")
		fmt.Printf("catalog: %d collections\n", len(appInstance.Config.Catalog.Collections))
		return nil
	},
}
