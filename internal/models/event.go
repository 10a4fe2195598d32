package models

import "time"

// Event types published after a product mutation.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// ProductEvent is the message published to the broker when a product changes.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id"`
	Nome       string    `json:"nome"`
	Preco      string    `json:"preco"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProductEvent builds an event of the given type from product.
func NewProductEvent(eventType string, product *Product) ProductEvent {
	return ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		Nome:       product.Nome,
		Preco:      product.Preco.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}
}
