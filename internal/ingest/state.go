package ingest

import "github.com/yungbote/paissadb/internal/types"

// NotifyEvent names the changes pushed to the notification collaborator.
type NotifyEvent string

const (
	NotifyOpenedChanged NotifyEvent = "opened_changed"
	NotifySold          NotifyEvent = "sold"
)

// Notifier receives plot-change events, best effort. Implementations
// must not block the ingest path.
type Notifier interface {
	Notify(id types.PlotIdentity, ev NotifyEvent)
}

// nextState runs the per-plot state machine for an accepted observation.
// An owned sighting on a plot we believed open means the house was
// claimed: the run ends in sold. Sold is terminal only within one
// ownership cycle; the next owned sighting moves it back to owned.
func nextState(cur, reported types.PlotState) types.PlotState {
	switch reported {
	case types.StateOwned:
		if cur == types.StateOpen {
			return types.StateSold
		}
		return types.StateOwned
	case types.StateOpen:
		return types.StateOpen
	default:
		return cur
	}
}
