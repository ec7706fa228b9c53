package utils

import (
	"errors"
	"time"
)

const DayLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("date invalide, format attendu AAAA-MM-JJ")
	ErrFutureDate  = errors.New("impossible d'enregistrer une performance pour une date future")
	ErrDateRange   = errors.New("la date de début doit précéder la date de fin")
)

// ParseDay lit une date calendaire dans le fuseau loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, value, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseOptionalDay renvoie nil pour une chaîne vide.
func ParseOptionalDay(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseDay(value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func ValidatePerformanceDate(date, now time.Time) error {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	if date.After(today) {
		return ErrFutureDate
	}
	return nil
}

func ValidateDateRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return ErrDateRange
	}
	return nil
}
