package lifecycle

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts tried, in order, before a string is read as epoch seconds, so an
// ISO-8601 basic date such as "20250110" is a date. Layouts without a zone
// are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"20060102T150405Z0700",
	"20060102T150405",
	"20060102",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant normalizes a boundary value into a UTC instant.
//
// Accepted inputs are time.Time, *time.Time, ISO-8601 strings, epoch
// seconds as any integer or float type, json.Number and numeric strings.
// Absent, zero, non-positive or unparseable values yield nil.
func ParseInstant(v any) *time.Time {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return fromTime(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return fromTime(*val)
	case string:
		return parseString(val)
	case *string:
		if val == nil {
			return nil
		}
		return parseString(*val)
	case json.Number:
		return parseString(val.String())
	case int:
		return fromEpoch(float64(val))
	case int8:
		return fromEpoch(float64(val))
	case int16:
		return fromEpoch(float64(val))
	case int32:
		return fromEpoch(float64(val))
	case int64:
		return fromEpochInt(val)
	case uint:
		return fromEpoch(float64(val))
	case uint8:
		return fromEpoch(float64(val))
	case uint16:
		return fromEpoch(float64(val))
	case uint32:
		return fromEpoch(float64(val))
	case uint64:
		if val > math.MaxInt64 {
			return nil
		}
		return fromEpochInt(int64(val))
	case float32:
		return fromEpoch(float64(val))
	case float64:
		return fromEpoch(val)
	default:
		return nil
	}
}

func fromTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

// maxEpochSeconds keeps conversions well inside time.Time's range.
const maxEpochSeconds = 1 << 40

func fromEpochInt(sec int64) *time.Time {
	if sec <= 0 || sec > maxEpochSeconds {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func fromEpoch(sec float64) *time.Time {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec <= 0 || sec > maxEpochSeconds {
		return nil
	}
	whole, frac := math.Modf(sec)
	t := time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
	return &t
}

func parseString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fromTime(t)
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromEpochInt(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}
	return nil
}
