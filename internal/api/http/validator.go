package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/utils"
)

var validate *val.Validate

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// date: YYYY-MM-DD
	if err := validate.RegisterValidation("date", func(fl val.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	if err := validate.RegisterValidation("allocation_status", func(fl val.FieldLevel) bool {
		switch domain.AllocationStatus(fl.Field().String()) {
		case domain.AllocationStatusScheduled, domain.AllocationStatusBorrowed, domain.AllocationStatusPendingReturn,
			domain.AllocationStatusReturned, domain.AllocationStatusCancelled:
			return true
		}
		return false
	}); err != nil {
		panic(err)
	}
}

// errBadRequest marks decoding and validation failures.
var errBadRequest = errors.New("bad request")

// Validate decodes r into data and validates the result.
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	// An empty body decodes as the zero value; required tags still apply.
	if err := decoder.Decode(data); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: failed to decode request body: %v", errBadRequest, err)
	}
	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, message(err))
	}
	return nil
}

// message renders validator errors as "field: rule" pairs.
func message(err error) string {
	var verrs val.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "date":
			parts = append(parts, field+" must be a date in YYYY-MM-DD format")
		case "allocation_status":
			parts = append(parts, field+" is not an allocation status")
		default:
			if fe.Param() != "" {
				parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
			} else {
				parts = append(parts, fmt.Sprintf("%s must satisfy %s", field, fe.Tag()))
			}
		}
	}
	return strings.Join(parts, "; ")
}
