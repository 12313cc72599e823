package models

import (
	"encoding/json"
	"time"
)

// Product change event types, used as AMQP routing keys.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
	EventProductsReset  = "product.reset"
)

// ProductEvent is published after a successful change to the catalog.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  uint      `json:"product_id,omitempty"`
	Product    *Product  `json:"product,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalJSON decodes an event. Product deserialization never reads an id, so the
// product's id is restored from ProductID.
func (e *ProductEvent) UnmarshalJSON(data []byte) error {
	type event ProductEvent
	var decoded event
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Product != nil {
		decoded.Product.ID = decoded.ProductID
	}
	*e = ProductEvent(decoded)
	return nil
}
