// Package reconcile maps records between the logical field names used by API
// callers (camelCase, legacy) and the suffixed column names of the record
// backend. Each entity declares one Mapping; every read and write goes
// through it so that the fallback order and coercions live in one place.
package reconcile

import (
	"strings"

	"github.com/clinic/clinic/internal/platform/records"
)

// IDColumn is the backend's primary key column. It is returned on every read
// without being requested and is never written from caller input.
const IDColumn = "Id"

// Kind selects the coercion applied to a field.
type Kind int

const (
	String Kind = iota
	Int         // integer; numeric strings accepted
	Ref         // foreign key; also accepts a nested {"Id": n} reference
	List        // []string on the logical side, comma-joined string in the backend
	JSON        // structured value stored as a JSON string
	Date        // YYYY-MM-DD
)

// Mode distinguishes create payloads (defaults, required checks) from update
// payloads (only what the caller supplied).
type Mode int

const (
	Create Mode = iota
	Update
)

// Rule maps one logical field.
type Rule struct {
	Logical  string   // name exposed to callers, e.g. "dateOfBirth"
	Column   string   // backend column, e.g. "date_of_birth_c"
	Legacy   []string // extra fallback keys; dotted paths reach into nested objects
	Kind     Kind
	Default  any  // applied on create when the value is absent
	Required bool // absent on create is a validation error
	Lenient  bool // on create, uncoercible input falls back to Default instead of failing
}

func (r Rule) keys() []string {
	keys := make([]string, 0, 2+len(r.Legacy))
	keys = append(keys, r.Column)
	if r.Logical != "" && r.Logical != r.Column {
		keys = append(keys, r.Logical)
	}
	return append(keys, r.Legacy...)
}

// Mapping is the full field table for one entity.
type Mapping []Rule

// Columns returns the backend columns to request, in declaration order.
func (m Mapping) Columns() []string {
	cols := make([]string, 0, len(m))
	for _, r := range m {
		if r.Column == IDColumn {
			continue
		}
		cols = append(cols, r.Column)
	}
	return cols
}

// Rule returns the rule for a logical field name.
func (m Mapping) Rule(logical string) (Rule, bool) {
	for _, r := range m {
		if r.Logical == logical {
			return r, true
		}
	}
	return Rule{}, false
}

// Read resolves every logical field of raw. Backend data is never rejected:
// values that cannot be coerced are left out of the result, and list fields
// always resolve to a non-nil slice.
func (m Mapping) Read(raw map[string]any) Values {
	out := make(Values, len(m))
	for _, r := range m {
		val, ok := Lookup(raw, r.keys()...)
		switch r.Kind {
		case List:
			out[r.Logical] = SplitList(val)
		case Int, Ref:
			if n, err := ToInt(val); ok && err == nil {
				out[r.Logical] = n
			}
		case JSON:
			if ok {
				out[r.Logical] = DecodeJSON(val)
			}
		case Date:
			if ok {
				out[r.Logical] = readDate(val)
			}
		default:
			if ok {
				out[r.Logical] = ToString(val)
			}
		}
	}
	return out
}

// Write builds the backend payload for input. Only backend column names are
// emitted and absent values are omitted entirely.
func (m Mapping) Write(input map[string]any, mode Mode) (records.Record, error) {
	out := make(records.Record, len(m))
	for _, r := range m {
		if r.Column == IDColumn {
			continue
		}
		val, ok := Lookup(input, r.keys()...)
		if !ok {
			if mode == Create {
				if r.Required {
					return nil, &records.ValidationError{Field: r.Logical, Reason: "is required"}
				}
				if r.Default != nil {
					out[r.Column] = r.Default
				}
			}
			continue
		}
		enc, err := encode(r, val)
		if err != nil {
			if r.Lenient && mode == Create {
				if r.Default != nil {
					out[r.Column] = r.Default
				}
				continue
			}
			return nil, err
		}
		out[r.Column] = enc
	}
	return out, nil
}

func encode(r Rule, val any) (any, error) {
	switch r.Kind {
	case Int, Ref:
		n, err := ToInt(val)
		if err != nil {
			return nil, &records.ValidationError{Field: r.Logical, Value: val, Reason: "must be an integer"}
		}
		if r.Kind == Ref && n <= 0 {
			return nil, &records.ValidationError{Field: r.Logical, Value: val, Reason: "must be a positive id"}
		}
		return n, nil
	case List:
		return JoinList(SplitList(val)), nil
	case JSON:
		s, err := EncodeJSON(val)
		if err != nil {
			return nil, &records.ValidationError{Field: r.Logical, Value: val, Reason: "is not serializable"}
		}
		return s, nil
	case Date:
		d, err := ToDate(val)
		if err != nil {
			return nil, &records.ValidationError{Field: r.Logical, Value: val, Reason: "must be a date (YYYY-MM-DD)"}
		}
		return d, nil
	default:
		return ToString(val), nil
	}
}

// Lookup returns the first present value among keys. nil and the empty string
// count as absent. A key containing dots walks nested objects.
func Lookup(src map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		v, ok := lookupPath(src, key)
		if !ok || isBlank(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func lookupPath(src map[string]any, key string) (any, bool) {
	if src == nil {
		return nil, false
	}
	if v, ok := src[key]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(key, ".")
	if !found {
		return nil, false
	}
	nested, ok := src[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return lookupPath(nested, rest)
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

// Values holds the reconciled logical fields of one record.
type Values map[string]any

// String returns the field as a string, or "" when absent.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the field as an int, or 0 when absent.
func (v Values) Int(key string) int {
	n, _ := v[key].(int)
	return n
}

// List returns the field as a non-nil slice.
func (v Values) List(key string) []string {
	if l, ok := v[key].([]string); ok {
		return l
	}
	return []string{}
}

// Any returns the raw reconciled value.
func (v Values) Any(key string) any {
	return v[key]
}

// OptString returns a pointer to the field, or nil when absent.
func (v Values) OptString(key string) *string {
	s, ok := v[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}
