package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/go-playground/validator/v10"
)

// SearchFilters holds the user's search criteria. Zero values mean "not set".
type SearchFilters struct {
	Brand      string  `json:"brand,omitempty"`
	Model      string  `json:"model,omitempty"`
	MinPrice   float64 `json:"min_price,omitempty" validate:"gte=0"`
	MaxPrice   float64 `json:"max_price,omitempty" validate:"omitempty,gte=0,gtefield=MinPrice"`
	MinYear    int     `json:"min_year,omitempty" validate:"omitempty,min=1900,max=2100"`
	MaxYear    int     `json:"max_year,omitempty" validate:"omitempty,min=1900,max=2100,gtefield=MinYear"`
	MaxMileage float64 `json:"max_mileage,omitempty" validate:"gte=0"`
	Region     string  `json:"region,omitempty"`
}

var filtersValidator = validator.New()

// IsEmpty reports whether no criteria are set
func (f SearchFilters) IsEmpty() bool {
	return f == SearchFilters{}
}

// Validate checks the numeric ranges. An empty filter set is valid.
func (f SearchFilters) Validate() error {
	err := filtersValidator.Struct(f)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return common.WrapError(err, "filter validation error")
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		case "gtefield":
			messages = append(messages, fmt.Sprintf("%s must be greater than or equal to %s", e.Field(), e.Param()))
		case "min", "max", "gte":
			messages = append(messages, fmt.Sprintf("%s out of range (%s %s, got %v)", e.Field(), e.Tag(), e.Param(), e.Value()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed '%s'", e.Field(), e.Tag()))
		}
	}
	return common.NewValidationError("filters", f, strings.Join(messages, "; "))
}
