package messaging

import (
	messaging "github.com/rodolfodevapp/eventshop-messaging-go/rabbitmq"
)

const itemsExchange = "inventory.items"

// Producer para inventory.items. No consumers are started on it.
func NewItemEventBus(rabbitUri string) *messaging.RabbitMqEventBus {
	opts := messaging.RabbitMqOptions{
		URI:          rabbitUri,
		ExchangeName: itemsExchange,
		QueuePrefix:  "itemsync.publisher.v1",
		Prefetch:     32,
		RetryDelayMs: 30000,
	}
	return messaging.NewRabbitMqEventBus(opts, nil, nil)
}
