package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/pkg/validator"
)

func validateInput(v interface{}) error {
	if msg := validator.FirstError(v); msg != "" {
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	}
	return nil
}

// checkItems applies the line-item rules; non-positive quantities are InvalidQuantity
func checkItems(items model.LineItems) error {
	if err := items.Validate(); err != nil {
		if errors.Is(err, model.ErrNonPositiveQuantity) {
			return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// parseDocumentDate accepts YYYY-MM-DD or RFC3339; empty means today
func parseDocumentDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	if d, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalid("date %q must be YYYY-MM-DD", s)
	}
	return d, nil
}
