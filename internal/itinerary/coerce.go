package itinerary

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexString decodes strings, numbers and booleans into text. Anything
// else (null, objects, arrays) becomes the empty string.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		*s = ""
		return nil
	}
	switch t := v.(type) {
	case string:
		*s = FlexString(t)
	case json.Number:
		*s = FlexString(t.String())
	case bool:
		*s = FlexString(strconv.FormatBool(t))
	default:
		*s = ""
	}
	return nil
}

func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// FlexInt decodes integers, floats (truncated) and numeric strings.
// Unusable input decodes to zero.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	var s FlexString
	_ = s.UnmarshalJSON(b)
	f, err := strconv.ParseFloat(s.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = FlexInt(int(f))
	return nil
}

// FlexFloat is an optional number that also accepts numeric strings.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	var s FlexString
	_ = s.UnmarshalJSON(b)
	v, err := strconv.ParseFloat(s.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = FlexFloat{}
		return nil
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns nil when the value is absent.
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// PriceLevel accepts a 0-4 number or a Places API enum such as
// "PRICE_LEVEL_MODERATE".
type PriceLevel struct {
	Value int
	Valid bool
}

var priceLevelNames = map[string]int{
	"PRICE_LEVEL_FREE":           0,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

func (p *PriceLevel) UnmarshalJSON(b []byte) error {
	var s FlexString
	_ = s.UnmarshalJSON(b)
	raw := strings.ToUpper(s.String())
	if lvl, ok := priceLevelNames[raw]; ok {
		*p = PriceLevel{Value: lvl, Valid: true}
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n <= 4 {
		*p = PriceLevel{Value: n, Valid: true}
		return nil
	}
	*p = PriceLevel{}
	return nil
}

func (p PriceLevel) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Ptr returns nil when the level is unknown.
func (p PriceLevel) Ptr() *int {
	if !p.Valid {
		return nil
	}
	v := p.Value
	return &v
}

// FlexStrings accepts a list of strings or a single string. Non-string
// list elements are skipped.
type FlexStrings []string

func (l *FlexStrings) UnmarshalJSON(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		var one FlexString
		_ = one.UnmarshalJSON(b)
		if one.String() == "" {
			*l = nil
			return nil
		}
		*l = FlexStrings{one.String()}
		return nil
	}
	out := make(FlexStrings, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// isObject reports whether raw holds a JSON object.
func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// decodeAny decodes raw into a generic value, keeping numbers as json.Number.
func decodeAny(raw json.RawMessage) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}
