package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ListSeparator joins list fields on write.
const ListSeparator = ","

const dateLayout = "2006-01-02"

// ToInt coerces v to an int. Accepted inputs: Go integers, integral floats,
// json.Number, numeric strings, and nested references carrying an "Id" member.
func ToInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, fmt.Errorf("not an integer: %v", t)
		}
		if t >= float64(math.MaxInt) || t < float64(math.MinInt) {
			return 0, fmt.Errorf("out of range: %v", t)
		}
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, err
		}
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	case map[string]any:
		if id, ok := Lookup(t, "Id", "id"); ok {
			return ToInt(id)
		}
		return 0, fmt.Errorf("reference has no Id")
	case nil:
		return 0, fmt.Errorf("missing value")
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

// ResolveRef returns the integer id behind a foreign key in any of its shapes.
func ResolveRef(v any) (int, bool) {
	n, err := ToInt(v)
	return n, err == nil
}

// ToString renders scalar values the way the backend stores them.
func ToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// SplitList normalizes a list field. Strings are split on the separator;
// every item is trimmed and blanks are dropped. Anything absent yields an
// empty slice.
func SplitList(v any) []string {
	switch t := v.(type) {
	case string:
		return compactItems(strings.Split(t, ListSeparator))
	case []string:
		return compactItems(t)
	case []any:
		return compactItems(lo.Map(t, func(item any, _ int) string { return ToString(item) }))
	}
	return []string{}
}

func compactItems(items []string) []string {
	return lo.FilterMap(items, func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}

// JoinList is the write-side inverse of SplitList. Items that contain the
// separator do not survive a round trip.
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// EncodeJSON stores structured values as a JSON string; strings are kept as is.
func EncodeJSON(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeJSON turns a stored JSON object or array back into a structured value.
// Anything else is returned unchanged.
func DecodeJSON(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return s
	}
	var out any
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return s
	}
	return out
}

// ToDate accepts YYYY-MM-DD, RFC 3339 strings and time.Time values.
func ToDate(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(dateLayout), nil
	case string:
		s := strings.TrimSpace(t)
		if d, err := time.Parse(dateLayout, s); err == nil {
			return d.Format(dateLayout), nil
		}
		d, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return "", err
		}
		return d.Format(dateLayout), nil
	}
	return "", fmt.Errorf("unsupported type %T", v)
}

func readDate(v any) string {
	if d, err := ToDate(v); err == nil {
		return d
	}
	return ToString(v)
}
