// Package validation checks product request bodies before they reach the
// store. It collects one error per failing field and never stops early.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"catalogo/internal/models"

	"github.com/go-playground/validator/v10"
)

// Client-facing messages per field.
const (
	MessageNomeRequired = "Nome é obrigatório"
	MessagePrecoDecimal = "Preço deve ser um número"
	messageInvalidField = "Valor inválido"
)

var fieldMessages = map[string]string{
	"nome":  MessageNomeRequired,
	"preco": MessagePrecoDecimal,
}

var decimalPattern = regexp.MustCompile(`^[-+]?[0-9]*(\.[0-9]+)?$`)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// IsDecimal reports whether s is an optionally signed decimal number such as
// "10", "-3.5", "+0.99" or ".5".
func IsDecimal(s string) bool {
	switch s {
	case "", "+", "-":
		return false
	}
	return decimalPattern.MatchString(s)
}

// Validator runs the product rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the decimal rule registered and JSON names
// used as field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		return IsDecimal(fl.Field().String())
	})
	v.RegisterCustomTypeFunc(optionalText[string], models.Optional[string]{})
	v.RegisterCustomTypeFunc(optionalText[models.PriceText], models.Optional[models.PriceText]{})
	return &Validator{validate: v}
}

// optionalText exposes an optional field to the rules as a *string: nil when
// the key was absent, "" when it was null.
func optionalText[T ~string](field reflect.Value) interface{} {
	o, ok := field.Interface().(models.Optional[T])
	if !ok || !o.Set {
		return (*string)(nil)
	}
	text := string(o.Value)
	return &text
}

// ValidateCreate checks a create request: nome and preco are required.
func (v *Validator) ValidateCreate(req models.CreateProductRequest) []FieldError {
	return v.collect(req)
}

// ValidateUpdate checks an update request: fields are optional, but present
// ones follow the create rules. A null nome or preco counts as present.
func (v *Validator) ValidateUpdate(req models.UpdateProductRequest) []FieldError {
	return v.collect(req)
}

func (v *Validator) collect(req interface{}) []FieldError {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: "body", Message: messageInvalidField}}
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		msg, ok := fieldMessages[e.Field()]
		if !ok {
			msg = messageInvalidField
		}
		fieldErrors = append(fieldErrors, FieldError{Field: e.Field(), Message: msg})
	}
	return fieldErrors
}
