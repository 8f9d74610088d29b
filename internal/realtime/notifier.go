package realtime

import (
	"context"

	"github.com/yungbote/paissadb/internal/ingest"
	"github.com/yungbote/paissadb/internal/logger"
	"github.com/yungbote/paissadb/internal/types"
)

// Publisher is the bus as the notifier sees it; nil means local-only.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// HubNotifier adapts the hub (and optional bus) to the reconciler's
// Notifier interface. Notify never blocks the ingest path and never
// returns an error to it.
type HubNotifier struct {
	log *logger.Logger
	hub *Hub
	bus Publisher
}

func NewHubNotifier(log *logger.Logger, hub *Hub, bus Publisher) *HubNotifier {
	return &HubNotifier{
		log: log.With("component", "HubNotifier"),
		hub: hub,
		bus: bus,
	}
}

func (n *HubNotifier) Notify(id types.PlotIdentity, ev ingest.NotifyEvent) {
	event := EventPlotOpenUpdate
	if ev == ingest.NotifySold {
		event = EventPlotSold
	}
	data := PlotEventData{Identity: id}
	for _, channel := range []string{
		WorldChannel(id.WorldID),
		DistrictChannel(id.WorldID, id.DistrictID),
	} {
		msg := Message{Channel: channel, Event: event, Data: data}
		if n.bus != nil {
			if err := n.bus.Publish(context.Background(), msg); err != nil {
				n.log.Warn("bus publish failed, falling back to local broadcast", "channel", channel, "error", err)
				n.hub.Broadcast(msg)
			}
			continue
		}
		n.hub.Broadcast(msg)
	}
}
