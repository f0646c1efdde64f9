// Package validate wraps go-playground/validator with the domain rules
// used on profile input: Brazilian document checksums and two-part
// names.  The first failing field is reported with a human-readable
// message.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
)

var global *validator.Validate

func init() {
	global = New()
}

// New builds a validator with the custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cpf", validateCPF)
	_ = v.RegisterValidation("fullname", validateFullName)
	return v
}

// Struct validates a tagged struct and maps the first failure to a
// repository.ErrValidation-wrapped error.
func Struct(ctx context.Context, s any) error {
	return mapError(global.StructCtx(ctx, s))
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrs) == 0 {
		return fmt.Errorf("%w: %v", repository.ErrValidation, err)
	}
	ve := vErrs[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = "field is required"
	case "email":
		msg = "invalid email address"
	case "cpf":
		msg = "invalid document checksum"
	case "fullname":
		msg = "name must have at least two parts"
	case "min":
		msg = "field is below minimum length"
	case "max":
		msg = "field exceeds maximum length"
	default:
		msg = "invalid value"
	}
	return fmt.Errorf("%w: %s: %s", repository.ErrValidation, ve.Field(), msg)
}

// validateFullName requires at least two non-empty name parts.
func validateFullName(fl validator.FieldLevel) bool {
	parts := strings.Fields(fl.Field().String())
	return len(parts) >= 2
}

// validateCPF checks the two mod-11 verifier digits of a CPF document.
// Formatting characters are stripped first; sequences of one repeated
// digit pass the arithmetic but are rejected as known-invalid.
func validateCPF(fl validator.FieldLevel) bool {
	return ValidCPF(fl.Field().String())
}

// ValidCPF reports whether the document has a valid CPF checksum.
func ValidCPF(doc string) bool {
	digits := make([]int, 0, 11)
	for _, r := range doc {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		} else if r != '.' && r != '-' && r != ' ' {
			return false
		}
	}
	if len(digits) != 11 {
		return false
	}
	same := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}
	if digits[9] != checkDigit(digits[:9], 10) {
		return false
	}
	return digits[10] == checkDigit(digits[:10], 11)
}

// checkDigit computes one CPF verifier digit: weighted sum with weights
// descending from the given start, times ten, mod eleven; ten maps to
// zero.
func checkDigit(digits []int, weight int) int {
	sum := 0
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	d := sum * 10 % 11
	if d == 10 {
		d = 0
	}
	return d
}
