package dto

import (
	"errors"
	"reflect"

	"orcamentos/internal/tamanho"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validate is shared by the HTTP handlers and the assistant intake so both
// paths apply the same rules.
var Validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	Validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = Validate.RegisterValidation("tamanho", func(fl validator.FieldLevel) bool {
		return tamanho.Valido(fl.Field().String())
	})
}

// Campos runs the validator and returns field → failed tag, or nil when valid.
func Campos(v interface{}) map[string]string {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
