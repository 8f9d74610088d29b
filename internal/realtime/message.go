package realtime

import (
	"fmt"

	"github.com/yungbote/paissadb/internal/types"
)

type Event string

const (
	EventPlotOpenUpdate Event = "plot_open_update"
	EventPlotSold       Event = "plot_sold"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// Channel names clients can subscribe to. District channels nest under
// world channels; a message is published to both.
func WorldChannel(worldID int) string {
	return fmt.Sprintf("world:%d", worldID)
}

func DistrictChannel(worldID, districtID int) string {
	return fmt.Sprintf("district:%d:%d", worldID, districtID)
}

type PlotEventData struct {
	Identity types.PlotIdentity `json:"plot"`
}
