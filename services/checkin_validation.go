package services

import (
	"strings"
	"time"

	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/utils"
)

// ParseDate parses a YYYY-MM-DD string into UTC midnight of that calendar day.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, newValidationError("date must be in YYYY-MM-DD format")
	}
	return d, nil
}

// sanitizeMetrics strips markup from free-text fields. A field left empty
// after cleaning is treated as not reported.
func sanitizeMetrics(m *models.CheckinMetrics) {
	for _, field := range []**string{&m.SleepNotes, &m.Mood, &m.ExerciseType, &m.ProductivityNotes} {
		if *field == nil {
			continue
		}
		clean := utils.SanitizeText(**field)
		if clean == "" {
			*field = nil
			continue
		}
		*field = &clean
	}
}

// prepare validates in and returns the normalized date and metrics. When
// fallback is non-zero an empty date means "keep fallback".
func (s *CheckinService) prepare(in models.CheckinInput, fallback time.Time) (time.Time, models.CheckinMetrics, error) {
	verr := &ValidationError{}
	metrics := in.CheckinMetrics
	sanitizeMetrics(&metrics)

	var date time.Time
	switch raw := strings.TrimSpace(in.Date); {
	case raw == "" && !fallback.IsZero():
		date = fallback
	case raw == "":
		verr.add("date is required")
	default:
		d, err := ParseDate(raw)
		if err != nil {
			verr.add("date must be in YYYY-MM-DD format")
			break
		}
		if d.After(s.Today()) {
			verr.add("date cannot be in the future")
		}
		date = d
	}

	if err := collect(s.validate, metrics, verr); err != nil {
		return time.Time{}, models.CheckinMetrics{}, err
	}
	if err := verr.errOrNil(); err != nil {
		return time.Time{}, models.CheckinMetrics{}, err
	}
	return date, metrics, nil
}
