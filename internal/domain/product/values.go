package product

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================
// Payload accessors
// ============================================================
//
// The remote API is loose with types: numbers arrive as strings, ints as
// floats, lists as comma-joined strings. Every read goes through one of
// these so the tolerance lives in exactly one place.

// getString tries keys in order and returns the first non-empty string value.
func getString(raw Payload, keys ...string) (string, bool) {
	if raw == nil {
		return "", false
	}
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), true
		case int:
			return strconv.Itoa(t), true
		}
	}
	return "", false
}

// getDecimal parses the first key holding a numeric value ("12.5", 12.5, 12).
func getDecimal(raw Payload, keys ...string) (decimal.Decimal, bool) {
	if raw == nil {
		return decimal.Zero, false
	}
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				continue
			}
			if d, err := decimal.NewFromString(s); err == nil {
				return d, true
			}
		case float64:
			return decimal.NewFromFloat(t), true
		case int:
			return decimal.NewFromInt(int64(t)), true
		case int64:
			return decimal.NewFromInt(t), true
		}
	}
	return decimal.Zero, false
}

// getInt truncates toward zero; "3", 3.0 and 3 all read as 3.
func getInt(raw Payload, keys ...string) (int, bool) {
	d, ok := getDecimal(raw, keys...)
	if !ok {
		return 0, false
	}
	return int(d.IntPart()), true
}

// splitList turns "a, b,c" into ["a","b","c"], dropping empties.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// asList accepts either a JSON array or a comma-joined string.
func asList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return splitList(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case []string:
		return splitList(strings.Join(t, ","))
	default:
		return nil
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
