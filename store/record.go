package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// IDField is the record field holding the record id.
const IDField = "id"

// ErrInvalidID is returned when a record id is neither a string nor a number.
var ErrInvalidID = errors.New("store: record id must be a string or number")

// Record is an open-ended field bag. Values must be JSON-encodable.
type Record map[string]any

// ID returns the record's id field, or nil when absent.
func (r Record) ID() any {
	return r[IDField]
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IDKey returns the collection key for an id value. Strings are used as-is,
// numbers are formatted the way a browser formats a number used as an object
// key (see numberKey). ok is false for nil and the empty string, which mean
// "no id".
func IDKey(v any) (key string, ok bool, err error) {
	switch id := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return id, id != "", nil
	}

	f, isNum := toNumber(v)
	if !isNum {
		if s, isStr := toString(v); isStr {
			return s, s != "", nil
		}
		return "", false, fmt.Errorf("%w: got %T", ErrInvalidID, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false, fmt.Errorf("%w: got %v", ErrInvalidID, f)
	}
	return numberKey(f), true, nil
}

// numberKey formats f in shortest round-trip form: plain decimal for
// 1e-6 <= |f| < 1e21, exponent form ("1e+21", "1.5e-7") outside that range.
// Negative zero formats as "0".
func numberKey(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// collection is the decoded content of a type's slot.
type collection map[string]Record

func decodeCollection(raw string) (collection, error) {
	c := collection{}
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, err
	}
	// A "null" slot decodes to a nil map.
	if c == nil {
		c = collection{}
	}
	return c, nil
}

func (c collection) encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sorted returns the records ordered by id key.
func (c collection) sorted() []Record {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, c[k])
	}
	return out
}

// normalize round-trips a record through JSON so that the value returned to
// callers is identical to what a later read produces.
func normalize(r Record) (Record, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// valuesEqual reports strict equality between a stored field value and a
// query value: same JSON kind and same value, no cross-kind coercion.
// Objects and arrays never match.
func valuesEqual(stored, query any) bool {
	if stored == nil || query == nil {
		return stored == nil && query == nil
	}
	if a, ok := toNumber(stored); ok {
		b, ok := toNumber(query)
		return ok && a == b
	}
	if a, ok := toString(stored); ok {
		b, ok := toString(query)
		return ok && a == b
	}
	if a, ok := stored.(bool); ok {
		rv := reflect.ValueOf(query)
		return rv.Kind() == reflect.Bool && rv.Bool() == a
	}
	return false
}

func toNumber(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func toString(v any) (string, bool) {
	if _, ok := v.(json.Number); ok {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// ParseCollection decodes the raw content of a type's slot into records keyed by id.
func ParseCollection(raw string) (map[string]Record, error) {
	return decodeCollection(raw)
}
