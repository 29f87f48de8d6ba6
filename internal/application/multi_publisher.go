package application

import (
	"context"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

// MultiPublisher hands every event to each publisher in order.
type MultiPublisher []domain.Publisher

func (m MultiPublisher) Publish(ctx context.Context, event string, payload any) {
	for _, p := range m {
		p.Publish(ctx, event, payload)
	}
}
