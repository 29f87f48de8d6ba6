package domain

// EventItemUpdate es el nombre del evento que reciben los clientes en vivo.
const EventItemUpdate = "item_update"

// ItemUpdateEvent is the payload of EventItemUpdate. INSERT/UPDATE carry the
// full item, DELETE carries only the identifier.
type ItemUpdateEvent struct {
	Operation Operation `json:"operation"`
	Item      *Item     `json:"item,omitempty"`
	ItemID    *int64    `json:"item_id,omitempty"`
}

func NewItemChangedEvent(op Operation, item Item) ItemUpdateEvent {
	return ItemUpdateEvent{
		Operation: op,
		Item:      &item,
	}
}

func NewItemDeletedEvent(itemID int64) ItemUpdateEvent {
	return ItemUpdateEvent{
		Operation: OperationDelete,
		ItemID:    &itemID,
	}
}
