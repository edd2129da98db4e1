// Package validate checks free-text registration input.
package validate

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidFormat is returned when the text does not have the expected shape.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrOutOfRange is returned when well-formed input violates configured bounds.
	ErrOutOfRange = errors.New("out of range")
)

// Rules tightens the base format checks. Zero fields apply no bound.
type Rules struct {
	PhoneMinDigits int `yaml:"phone_min_digits" envconfig:"VALIDATION_PHONE_MIN_DIGITS"`
	PhoneMaxDigits int `yaml:"phone_max_digits" envconfig:"VALIDATION_PHONE_MAX_DIGITS"`
	AgeMin         int `yaml:"age_min" envconfig:"VALIDATION_AGE_MIN"`
	AgeMax         int `yaml:"age_max" envconfig:"VALIDATION_AGE_MAX"`
}

// Check reports inconsistent bounds.
func (r Rules) Check() error {
	if r.PhoneMinDigits < 0 || r.PhoneMaxDigits < 0 || r.AgeMin < 0 || r.AgeMax < 0 {
		return fmt.Errorf("validation bounds must be >= 0")
	}
	if r.PhoneMaxDigits > 0 && r.PhoneMinDigits > r.PhoneMaxDigits {
		return fmt.Errorf("validation.phone_min_digits %d exceeds phone_max_digits %d", r.PhoneMinDigits, r.PhoneMaxDigits)
	}
	if r.AgeMax > 0 && r.AgeMin > r.AgeMax {
		return fmt.Errorf("validation.age_min %d exceeds age_max %d", r.AgeMin, r.AgeMax)
	}
	return nil
}

// PhoneNumber is a "+"-prefixed digit string.
type PhoneNumber string

// Years is a validated, non-negative age.
type Years int

// Phone accepts text made of "+" followed by one or more ASCII digits.
func Phone(text string, rules Rules) (PhoneNumber, error) {
	if len(text) < 2 || text[0] != '+' || !allDigits(text[1:]) {
		return "", fmt.Errorf("phone: %w", ErrInvalidFormat)
	}
	n := len(text) - 1
	if rules.PhoneMinDigits > 0 && n < rules.PhoneMinDigits {
		return "", fmt.Errorf("phone: %d digits: %w", n, ErrOutOfRange)
	}
	if rules.PhoneMaxDigits > 0 && n > rules.PhoneMaxDigits {
		return "", fmt.Errorf("phone: %d digits: %w", n, ErrOutOfRange)
	}
	return PhoneNumber(text), nil
}

// Age accepts text made only of ASCII digits.
func Age(text string, rules Rules) (Years, error) {
	if !allDigits(text) {
		return 0, fmt.Errorf("age: %w", ErrInvalidFormat)
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("age: %w", ErrOutOfRange)
	}
	if rules.AgeMin > 0 && v < rules.AgeMin {
		return 0, fmt.Errorf("age: %d: %w", v, ErrOutOfRange)
	}
	if rules.AgeMax > 0 && v > rules.AgeMax {
		return 0, fmt.Errorf("age: %d: %w", v, ErrOutOfRange)
	}
	return Years(v), nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
