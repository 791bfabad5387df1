// Package datefmt converts upstream ISO-8601 timestamps into host-local display strings.
package datefmt

import (
	"strings"
	"time"
)

const (
	NotAvailable = "N/A"

	LayoutDateTime = "02/01/2006 15:04"
	LayoutDate     = "02/01/2006"
	LayoutISODate  = "2006-01-02"
)

// Upstream feeds mix second and minute precision and sometimes drop the offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z0700",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	LayoutISODate,
}

type Normalizer struct {
	loc *time.Location
}

func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// LoadNormalizer resolves an IANA zone name; empty means UTC.
func LoadNormalizer(zone string) (*Normalizer, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return NewNormalizer(time.UTC), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(loc), nil
}

func (n *Normalizer) Location() *time.Location {
	if n == nil || n.loc == nil {
		return time.UTC
	}
	return n.loc
}

// Format renders raw in the host zone as "DD/MM/YYYY HH:MM" or "DD/MM/YYYY".
// Malformed input yields "N/A".
func (n *Normalizer) Format(raw string, includeTime bool) string {
	parsed, ok := ParseTimestamp(raw)
	if !ok {
		return NotAvailable
	}
	local := parsed.In(n.Location())
	if includeTime {
		return local.Format(LayoutDateTime)
	}
	return local.Format(LayoutDate)
}

// ParseTimestamp parses an ISO-8601 timestamp; a missing offset means UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || value == NotAvailable {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight UTC.
func ParseDate(raw string) (time.Time, bool) {
	parsed, err := time.ParseInLocation(LayoutISODate, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// CompactDate renders t as YYYYMMDD, the upstream scoreboard range format.
func CompactDate(t time.Time) string {
	return t.Format("20060102")
}

// CompactISODate turns "2024-08-01..." into "20240801". It returns "" when raw is not a date.
func CompactISODate(raw string) string {
	value := strings.TrimSpace(raw)
	if len(value) >= len(LayoutISODate) {
		value = value[:len(LayoutISODate)]
	}
	parsed, ok := ParseDate(value)
	if !ok {
		return ""
	}
	return CompactDate(parsed)
}
