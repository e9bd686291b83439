package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON key so messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON reads a single JSON object from the request body into dst and
// runs struct validation on it. Every failure is returned as a 400 HTTPError.
// Unknown keys are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrBadRequest("Request body must be a JSON object")
		}
		if tooLarge := bodyTooLarge(err); tooLarge != nil {
			return tooLarge
		}
		return ErrBadRequestWrap("Invalid request payload: "+err.Error(), err)
	}
	// Anything after the first value, even a stray "}", is rejected.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if tooLarge := bodyTooLarge(err); tooLarge != nil {
			return tooLarge
		}
		return ErrBadRequest("Request body must contain a single JSON object")
	}

	return Validate(dst)
}

func bodyTooLarge(err error) *HTTPError {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return nil
	}
	return ErrPayloadTooLargeWrap(fmt.Sprintf("Request body must not exceed %d bytes", maxErr.Limit), err)
}

// Validate checks the validate tags on v. Missing required fields are listed
// in the "missing" payload key of the returned error.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ErrBadRequestWrap("Invalid request payload", err)
	}

	var missing, invalid []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
	}

	payload := map[string]any{}
	var parts []string
	if len(missing) > 0 {
		payload["missing"] = missing
		parts = append(parts, "missing required fields: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		payload["invalid"] = invalid
		parts = append(parts, "invalid fields: "+strings.Join(invalid, ", "))
	}

	apiErr := NewAPIError("Invalid request payload: "+strings.Join(parts, "; "), http.StatusBadRequest, payload)
	apiErr.cause = err
	return apiErr
}
