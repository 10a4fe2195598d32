package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

var jsonNull = []byte("null")

// PriceText is the raw text of a price as received from a client. It accepts
// both JSON strings and JSON numbers; any other JSON value is kept verbatim so
// validation can reject it with a field error instead of a decode failure.
type PriceText string

// UnmarshalJSON implements json.Unmarshaler. Numbers are normalised to plain
// decimal notation, so 1e2 becomes "100".
func (p *PriceText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, jsonNull) {
		*p = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*p = PriceText(s)
		return nil
	}
	if d, err := decimal.NewFromString(string(trimmed)); err == nil {
		*p = PriceText(d.String())
		return nil
	}
	*p = PriceText(trimmed)
	return nil
}

// Decimal parses the text.
func (p PriceText) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(string(p))
}

// Optional is a JSON field that remembers whether its key was sent at all and
// whether it was sent as null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a value that was sent as JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only called for keys that
// are present in the body, null included.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns the value when it was sent and not null.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// CreateProductRequest is the body of a create call.
type CreateProductRequest struct {
	Nome      string    `json:"nome" validate:"required"`
	Descricao *string   `json:"descricao"`
	Preco     PriceText `json:"preco" validate:"required,decimal"`
}

// UpdateProductRequest is the body of an update call. A null nome or preco
// fails validation; a null descricao clears it.
type UpdateProductRequest struct {
	Nome      Optional[string]    `json:"nome" validate:"omitnil,min=1"`
	Descricao Optional[string]    `json:"descricao"`
	Preco     Optional[PriceText] `json:"preco" validate:"omitnil,decimal"`
}
