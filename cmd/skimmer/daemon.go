// ABOUTME: Daemon command running the background sync scheduler
// ABOUTME: Installs the periodic job and waits for an interrupt

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quinn/skimmer/internal/config"
	"github.com/quinn/skimmer/internal/notify"
	"github.com/quinn/skimmer/internal/schedule"
	"github.com/quinn/skimmer/internal/syncer"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background sync scheduler",
	Long: `Run skimmer in the foreground, syncing sources on the configured
interval. Runs are skipped while offline or on low battery and retried
with backoff after failures.

Enable background sync first with 'skimmer prefs set background-sync on'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")

		prefsFile := config.NewPrefsFile("")
		prefs, err := prefsFile.Load()
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}

		orch := syncer.New(store)
		notifier := notify.NewTerminalNotifier(os.Stdout)
		scheduler := schedule.New(orch, store, prefsFile, notifier)

		if once {
			return scheduler.RunOnce(context.Background())
		}

		if !prefs.BackgroundSync {
			fmt.Println("Background sync is off. Enable it with 'skimmer prefs set background-sync on'")
			return nil
		}

		statusCh, unsubscribe := orch.Subscribe()
		defer unsubscribe()
		go func() {
			for st := range statusCh {
				if !st.Syncing && st.LastSyncedAt != nil {
					if st.ErrorMessage != "" {
						fmt.Printf("Sync finished with errors: %s\n", st.ErrorMessage)
					} else {
						fmt.Printf("Synced %d source(s)\n", st.Completed)
					}
				}
			}
		}()

		scheduler.Reschedule(prefs)
		defer scheduler.Stop()

		fmt.Printf("Background sync every %s. Press Ctrl-C to stop.\n", prefs.Interval())

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		fmt.Println("\nStopping...")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().Bool("once", false, "run a single scheduled sync pass and exit")
}
