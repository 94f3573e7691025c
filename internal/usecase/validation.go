package usecase

import (
	"errors"
	"reflect"
	"strings"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/go-playground/validator/v10"
)

// NewValidator - валидатор форм, в ошибках используются имена полей из json тегов
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest проверяет форму до любого удаленного вызова
func validateRequest(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	verr := &entity.ValidationError{}
	for _, fe := range fieldErrors {
		verr.Fields = append(verr.Fields, fe.Field())
	}
	return verr
}
