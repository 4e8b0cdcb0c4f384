package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// Bind binds a form-encoded or JSON payload depending on Content-Type. On
// failure it responds 400 whose message names the first failing field, with
// the full field list in details.
func Bind(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBind(out)

	if err == nil {
		return true
	}

	fields := fieldErrors(err, out)

	message := "Invalid request body"
	if len(fields) > 0 {
		message = fields[0].Field + " " + fields[0].Message
	}

	RespondBadRequest(ctx, message, gin.H{"fields": fields})

	return false
}

func fieldErrors(err error, out interface{}) []FieldError {
	var validatorError validator.ValidationErrors

	if !errors.As(err, &validatorError) {
		return nil
	}

	rootType := baseStructType(out)

	fields := make([]FieldError, 0, len(validatorError))

	for _, fieldError := range validatorError {
		rule := fieldError.Tag()
		param := fieldError.Param()

		fields = append(fields, FieldError{
			Field:   wireFieldName(rootType, fieldError.StructField()),
			Rule:    rule,
			Param:   param,
			Message: validationMessage(rule, param),
		})
	}

	return fields
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// wireFieldName maps a struct field to the name clients sent it under,
// preferring the form tag since most of the API is form-encoded.
func wireFieldName(rootType reflect.Type, structField string) string {
	if rootType == nil {
		return structField
	}

	sf, ok := rootType.FieldByName(structField)
	if !ok {
		return structField
	}

	for _, tag := range []string{"form", "json"} {
		name, _, _ := strings.Cut(sf.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return structField
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
