package utils

import (
	"fmt"
	"time"
)

// ISODateLayout is the accepted calendar date format (ISO 8601 date).
const ISODateLayout = "2006-01-02"

// ValidateDate checks that s is a valid YYYY-MM-DD date. An empty string is
// accepted (dates are optional).
func ValidateDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(ISODateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return nil
}

// ValidateLifespan checks both dates and, when both are present, that the
// birth date is strictly before the death date.
func ValidateLifespan(birthDate, deathDate string) error {
	if err := ValidateDate(birthDate); err != nil {
		return err
	}
	if err := ValidateDate(deathDate); err != nil {
		return err
	}
	if birthDate == "" || deathDate == "" {
		return nil
	}

	birth, _ := time.Parse(ISODateLayout, birthDate)
	death, _ := time.Parse(ISODateLayout, deathDate)
	if !birth.Before(death) {
		return fmt.Errorf("birth date %s must be before death date %s", birthDate, deathDate)
	}
	return nil
}
