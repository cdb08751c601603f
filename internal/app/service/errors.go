package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/storefront-api/internal/domain"
)

var ErrValidation = errors.New("validation failed")

// mapValidationError flattens validator field errors into one ErrValidation.
func mapValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

// IsInvalidInput reports whether err was caused by caller input rather than
// a storage or lookup failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, domain.ErrInvalidSortKey) ||
		errors.Is(err, domain.ErrInvalidPriceRange) ||
		errors.Is(err, domain.ErrInvalidMinRating) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrQuantityLimit)
}

// IsNotFound reports whether err names a missing product or cart.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrCartNotFound)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsNotFound(err):
		return "not_found"
	case IsInvalidInput(err):
		return "invalid"
	default:
		return "failure"
	}
}
