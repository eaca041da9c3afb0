// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Field names in error
// reports come from the json tag so that a ValidationError speaks the
// wire vocabulary (nome, preco, ...) rather than Go identifiers.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the struct tags on v and returns a ValidationError
// listing the missing required fields, or nil when v is valid.
func Validate(v any) *ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var missing []string
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			missing = append(missing, fe.Field())
		}
	}
	return &ValidationError{MissingFields: missing}
}
