package messaging

import (
	"context"
	"encoding/json"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/abstractions"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"github.com/rs/zerolog"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

// RabbitPublisher forwards live events as integration events. Like the
// websocket hub it is fire-and-forget: a failed publish is logged and lost.
type RabbitPublisher struct {
	bus abstractions.EventBus
	log zerolog.Logger
}

func NewRabbitPublisher(bus abstractions.EventBus, log zerolog.Logger) *RabbitPublisher {
	return &RabbitPublisher{bus: bus, log: log}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error().Err(err).Str("event", event).Msg("encode integration event")
		return
	}

	eventType := RoutingKeyFor(event, payload)

	// Envelope estándar
	envelope := primitives.NewIntegrationEventEnvelope(eventType, string(body))
	envelope.SetRoutingKey(eventType)

	if err := p.bus.Publish(ctx, &envelope); err != nil {
		p.log.Warn().Err(err).Str("event", eventType).Msg("publish integration event failed")
	}
}

// RoutingKeyFor names item events after what happened to the item
// ("ItemInserted", "ItemUpdated", "ItemDeleted"); other events keep their name.
func RoutingKeyFor(event string, payload any) string {
	ev, ok := payload.(domain.ItemUpdateEvent)
	if !ok || event != domain.EventItemUpdate {
		return event
	}
	switch ev.Operation {
	case domain.OperationInsert:
		return "ItemInserted"
	case domain.OperationUpdate:
		return "ItemUpdated"
	case domain.OperationDelete:
		return "ItemDeleted"
	default:
		return event
	}
}
