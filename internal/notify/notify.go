// Package notify contains the notification sinks the scheduler hands
// qualifying opportunities to. Sinks own their delivery; a failed delivery
// is theirs to report and never aborts an aggregation cycle.
package notify

import (
	"context"

	"arbradar/internal/spread"
)

// Notifier delivers one opportunity to an external channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, opp spread.Opportunity) error
}
