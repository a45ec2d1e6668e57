package itinerary

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*([ap])\.?\s*m?\.?$|^(\d{1,2})(?::(\d{2}))?$`)

// ParseTimeToMinutes converts a clock-like value to minutes since midnight.
// Strings may be "HH:MM", "H:MM AM/PM" or "H PM"; numbers are taken as
// minutes. The result is clamped to [0, 1440].
func ParseTimeToMinutes(v any) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return clampMinutes(t), true
	case int64:
		return clampMinutes(int(t)), true
	case float64:
		return clampMinutes(int(math.Round(t))), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return clampMinutes(int(math.Round(f))), true
	case string:
		return parseClock(t)
	case FlexString:
		return parseClock(string(t))
	default:
		return 0, false
	}
}

func parseClock(s string) (int, bool) {
	s = strings.ToLower(cleanSpaces(s))
	if s == "" {
		return 0, false
	}
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	if m[4] != "" {
		hour, _ := strconv.Atoi(m[4])
		minute := 0
		if m[5] != "" {
			minute, _ = strconv.Atoi(m[5])
		}
		if hour > 24 || minute > 59 {
			return 0, false
		}
		return clampMinutes(hour*60 + minute), true
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, false
	}
	hour %= 12
	if m[3] == "p" {
		hour += 12
	}
	return hour*60 + minute, true
}

// FormatMinutes renders minutes since midnight as "HH:MM", clamped to [00:00, 24:00].
func FormatMinutes(minutes int) string {
	minutes = clampMinutes(minutes)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func clampMinutes(m int) int {
	if m < 0 {
		return 0
	}
	if m > minutesPerDay {
		return minutesPerDay
	}
	return m
}

var slugSeparator = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of non-alphanumerics into a dash.
func Slugify(s string) string {
	s = slugSeparator.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}

// SafeInt coerces v to a positive int, returning fallback for zero,
// negative or unparseable values.
func SafeInt(v any, fallback int) int {
	f, ok := ToFloat(v)
	if !ok {
		return fallback
	}
	n := int(f)
	if n <= 0 {
		return fallback
	}
	return n
}

// ToFloat coerces numbers and numeric strings.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case FlexInt:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func hoursToMinutes(h float64) int {
	return int(math.Round(h * 60))
}

// cleanSpaces folds the narrow and thin spaces Google puts in opening hours.
func cleanSpaces(s string) string {
	s = strings.NewReplacer("\u202f", " ", "\u2009", " ", "\u00a0", " ").Replace(s)
	return strings.TrimSpace(s)
}
