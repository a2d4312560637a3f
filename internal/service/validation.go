package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
)

// NewValidator returns a validator with the back office tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerValidations(v)
	return v
}

func registerValidations(v *validator.Validate) {
	v.RegisterValidation("service_type", func(fl validator.FieldLevel) bool {
		return models.ServiceType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return models.PaymentMethod(strings.ToLower(fl.Field().String())).Valid()
	})
}
