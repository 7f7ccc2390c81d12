package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"fruitstore/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// validateStruct runs the struct tags of req and reports failures as a validation DomainError
// keyed by JSON field path, e.g. "items[0].fruitId".
func validateStruct(req any) error {
	if req == nil || (reflect.ValueOf(req).Kind() == reflect.Ptr && reflect.ValueOf(req).IsNil()) {
		return model.ErrInvalidJSON
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return model.NewValidationError("Validation failed", map[string]string{"request": err.Error()})
	}

	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fieldPath(fe)] = validationMessage(fe)
	}
	return model.NewValidationError("Validation failed", details)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return "is invalid"
}

// checkMoney rejects values the NUMERIC(p,2) columns would round or refuse.
func checkMoney(field string, d, max decimal.Decimal) error {
	if msg := model.CheckMoney(d, max); msg != "" {
		return model.NewValidationError("Validation failed", map[string]string{field: msg})
	}
	return nil
}
