// ABOUTME: Notification throttle and delivery for completed syncs
// ABOUTME: Minimum new-item count plus a minimum inter-notification interval

package notify

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// MinNewItems is the smallest new-item delta worth notifying about.
const MinNewItems = 3

// MinInterval is the minimum time between two notifications.
const MinInterval = 6 * time.Hour

// ShouldNotify decides whether a completed sync should surface a user
// notification. delta is max(0, newTotal-previousTotal), computed by
// the caller.
func ShouldNotify(delta int, enabled bool, lastNotifiedAt *time.Time, now time.Time) bool {
	if !enabled {
		return false
	}
	if delta < MinNewItems {
		return false
	}
	if lastNotifiedAt == nil {
		return true
	}
	return now.Sub(*lastNotifiedAt) >= MinInterval
}

// Notifier delivers a new-items notification. Fire-and-forget:
// implementations swallow delivery failures.
type Notifier interface {
	NotifyNewItems(count int)
}

// TerminalNotifier prints notifications to a writer, for the daemon's
// foreground mode.
type TerminalNotifier struct {
	out io.Writer
}

// NewTerminalNotifier creates a notifier writing to w.
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: w}
}

// NotifyNewItems prints a one-line notification.
func (n *TerminalNotifier) NotifyNewItems(count int) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(n.out, "%s %d new item(s) available\n", green("●"), count)
}
