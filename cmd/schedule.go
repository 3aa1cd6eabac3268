package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the periodic scan scheduler",
	Long: `Runs a cron scheduler that periodically enqueues a folder scan task.
The schedule comes from the schedule.cron config value (robfig/cron spec,
e.g. "@hourly" or "0 */4 * * *"). A worker must be running to pick the
scans up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		spec := appInstance.Config.Schedule.Cron
		c := cron.New()
		_, err = c.AddFunc(spec, func() {
			if err := appInstance.JobClient.EnqueueScanJob(ctx, "schedule"); err != nil {
				log.Errorf("Failed to enqueue scheduled scan: %v", err)
				return
			}
			log.Info("Enqueued scheduled folder scan")
		})
		if err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", spec, err)
		}

		log.Infof("Scheduler running (spec %q)", spec)
		c.Start()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		<-shutdown

		log.Info("Shutdown signal received, stopping scheduler")
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
