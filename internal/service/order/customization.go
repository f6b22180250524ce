package order

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// fieldRule describes one customization-data field. Fields outside this
// schema are passed through untouched so stored data survives schema drift.
type fieldRule struct {
	required bool
	maxLen   int
	kind     string // "text", "date", "url"
}

var customizationSchema = map[string]fieldRule{
	"bride_name":          {required: true, maxLen: 255, kind: "text"},
	"groom_name":          {required: true, maxLen: 255, kind: "text"},
	"event_date":          {required: true, kind: "date"},
	"event_time":          {required: true, kind: "text"},
	"venue_name":          {required: true, maxLen: 255, kind: "text"},
	"venue_address":       {required: true, kind: "text"},
	"google_maps_link":    {maxLen: 2048, kind: "url"},
	"bride_parents":       {maxLen: 500, kind: "text"},
	"groom_parents":       {maxLen: 500, kind: "text"},
	"background_music":    {maxLen: 255, kind: "text"},
	"bank_account_name":   {maxLen: 255, kind: "text"},
	"bank_account_number": {maxLen: 50, kind: "text"},
	"bank_name":           {maxLen: 255, kind: "text"},
}

const eventDateLayout = "2006-01-02"

// validateCustomization checks data against the schema. With full set, every
// required field must be present; as a patch only the supplied keys are
// checked.
func validateCustomization(data map[string]string, full bool, now time.Time) error {
	if full {
		if len(data) == 0 {
			return fmt.Errorf("%w: customization data is required", ErrValidation)
		}
		for key, rule := range customizationSchema {
			if !rule.required {
				continue
			}
			if strings.TrimSpace(data[key]) == "" {
				return fmt.Errorf("%w: %s is required", ErrValidation, key)
			}
		}
	}

	for key, value := range data {
		rule, known := customizationSchema[key]
		if !known {
			continue
		}
		if strings.TrimSpace(value) == "" {
			// A patch may not blank out a required field; orders always keep
			// a usable value for each of them.
			if rule.required {
				return fmt.Errorf("%w: %s is required", ErrValidation, key)
			}
			continue
		}
		if rule.maxLen > 0 && len(value) > rule.maxLen {
			return fmt.Errorf("%w: %s must not exceed %d characters", ErrValidation, key, rule.maxLen)
		}
		switch rule.kind {
		case "date":
			d, err := time.Parse(eventDateLayout, value)
			if err != nil {
				return fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", ErrValidation, key)
			}
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			if !d.After(today) {
				return fmt.Errorf("%w: %s must be in the future", ErrValidation, key)
			}
		case "url":
			u, err := url.ParseRequestURI(value)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("%w: %s must be a valid URL", ErrValidation, key)
			}
		}
	}

	return nil
}

// mergeCustomization overlays patch onto existing one level deep: patched
// keys win, untouched keys survive.
func mergeCustomization(existing, patch map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(patch))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
