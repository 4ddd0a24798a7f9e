// internal/models/record.go
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one decoded JSON object from the data source, either a property
// or a complaint. The source has no fixed schema, so canonical fields are read
// through ordered alias lists with typed defaults; a missing field is never
// an error.
type Record map[string]interface{}

// StringField returns the first present alias rendered as a string, or def.
// Numbers are rendered without a trailing ".0" so a rating of 4.5 displays
// as "4.5" and 4 as "4".
func (r Record) StringField(def string, aliases ...string) string {
	for _, key := range aliases {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			return val
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			return strconv.Itoa(val)
		case bool:
			return strconv.FormatBool(val)
		default:
			return fmt.Sprintf("%v", val)
		}
	}
	return def
}

// FloatField returns the first alias that coerces to a number. Coercion
// failure counts as absence, not an error.
func (r Record) FloatField(aliases ...string) (float64, bool) {
	for _, key := range aliases {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case float64:
			return val, true
		case int:
			return float64(val), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// --- Canonical property fields ---

func (r Record) ID() string {
	return r.StringField("N/A", "id")
}

func (r Record) Name() string {
	return r.StringField("Unnamed property", "name")
}

func (r Record) Location() string {
	return r.StringField("", "location", "address")
}

func (r Record) URL() string {
	return r.StringField("", "url")
}

// AirbnbDisplay returns the Airbnb rating for display, "N/A" when absent.
func (r Record) AirbnbDisplay() string {
	return r.StringField("N/A", "airbnb_rating", "airbnb")
}

// BookingDisplay returns the Booking rating for display, "N/A" when absent.
func (r Record) BookingDisplay() string {
	return r.StringField("N/A", "booking_rating", "booking")
}

// AirbnbRating returns the numeric Airbnb rating if present and coercible.
func (r Record) AirbnbRating() (float64, bool) {
	return r.FloatField("airbnb_rating", "airbnb")
}

// BookingRating returns the numeric Booking rating if present and coercible.
func (r Record) BookingRating() (float64, bool) {
	return r.FloatField("booking_rating", "booking")
}

// --- Canonical complaint fields ---

func (r Record) ComplaintTitle() string {
	return r.StringField("No title", "title", "subject")
}

func (r Record) ComplaintDescription() string {
	return r.StringField("No description", "description", "message", "text")
}

func (r Record) ComplaintStatus() string {
	return r.StringField("unknown", "status")
}

func (r Record) ComplaintSeverity() string {
	return r.StringField("", "severity", "priority")
}

func (r Record) ComplaintDate() string {
	return r.StringField("", "date", "created_at", "createdAt")
}

// Truncate cuts s to max runes and appends "..." when something was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
