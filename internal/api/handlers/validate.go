package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
)

var validate = newValidator()

// Дополнительный тег для дат в запросах
const tagDate = "isodate"

func newValidator() *validator.Validate {
	v := validator.New()

	// в сообщениях используем имена полей из json тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(tagDate, func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DateFormat, fl.Field().String())
		return err == nil
	})

	return v
}

// ValidateStruct проверяет теги validate у запроса и возвращает читаемое описание первой ошибки
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}

	fe := fieldErrors[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("поле %s обязательно", fe.Field())
	case tagDate:
		return fmt.Errorf("поле %s должно быть в формате YYYY-MM-DD", fe.Field())
	case "oneof":
		return fmt.Errorf("поле %s должно быть одним из: %s", fe.Field(), fe.Param())
	case "min", "max", "gte", "lte":
		return fmt.Errorf("поле %s вне допустимого диапазона (%s %s)", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Errorf("поле %s не прошло проверку %s", fe.Field(), fe.Tag())
	}
}
