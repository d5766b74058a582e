// Package docvalue provides a tagged-union document value and a dotted-path
// accessor over it. Structured extractions arrive as arbitrary nested JSON;
// the reconciliation engine addresses individual facts inside them with paths
// like "income.wages" or "properties[2].rents_received".
package docvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is an immutable document-shaped value. The zero value is null.
type Value struct {
	kind Kind
	b    bool
	num  decimal.Decimal
	str  string
	arr  []Value
	obj  map[string]Value
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

func NumberFromInt(n int64) Value { return Number(decimal.NewFromInt(n)) }

func NumberFromString(s string) (Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Null(), err
	}
	return Number(d), nil
}

// Object builds an object value from the given map. The map is not copied;
// callers hand over ownership.
func Object(fields map[string]Value) Value {
	return Value{kind: KindObject, obj: fields}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Field returns the named field of an object value, or null.
func (v Value) Field(name string) Value {
	if v.kind != KindObject {
		return Null()
	}
	return v.obj[name]
}

// Index returns the i-th element of an array value, or null when out of
// range or not an array.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Null()
	}
	return v.arr[i]
}

// Len returns the element count for arrays, zero otherwise.
func (v Value) Len() int {
	if v.kind != KindArray {
		return 0
	}
	return len(v.arr)
}

// At evaluates a dotted path with optional array indexing ("a.b[0].c")
// against the value. Any missing segment yields null; At never fails.
func (v Value) At(path string) Value {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		name, indexes := splitIndexes(seg)
		if name != "" {
			cur = cur.Field(name)
		}
		for _, idx := range indexes {
			cur = cur.Index(idx)
		}
	}
	return cur
}

// NumberAt evaluates the path and coerces the result to a decimal.
// Missing, null, boolean, array, object and unparseable string values all
// coerce to zero. This is the engine-wide "nothing there counts as zero"
// policy; callers that need to distinguish absence must use At directly.
func (v Value) NumberAt(path string) decimal.Decimal {
	return v.At(path).Number()
}

// Number coerces the value itself to a decimal, zero when not numeric.
// Numeric strings (with optional $ and thousands separators stripped)
// coerce too, since extractions frequently carry amounts as strings.
func (v Value) Number() decimal.Decimal {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		s := strings.TrimSpace(v.str)
		s = strings.ReplaceAll(s, "$", "")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Str returns the string payload of a string value, "" otherwise.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// splitIndexes parses a path segment like `properties[2][0]` into its field
// name and trailing indexes. A malformed bracket suffix is treated as part
// of the field name, which then simply fails to resolve.
func splitIndexes(seg string) (string, []int) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, nil
	}
	name := seg[:open]
	rest := seg[open:]
	var indexes []int
	for rest != "" {
		if rest[0] != '[' {
			return seg, nil
		}
		close := strings.IndexByte(rest, ']')
		if close < 0 {
			return seg, nil
		}
		idx, err := strconv.Atoi(rest[1:close])
		if err != nil {
			return seg, nil
		}
		indexes = append(indexes, idx)
		rest = rest[close+1:]
	}
	return name, indexes
}

// UnmarshalJSON decodes arbitrary JSON into the tagged union. Numbers are
// kept as decimals so monetary values never pass through binary floats.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return NumberFromString(t.String())
	case json.Delim:
		switch t {
		case '{':
			fields := make(map[string]Value)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null(), fmt.Errorf("docvalue: object key is %T, not string", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Null(), err
				}
				fields[key] = val
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Null(), err
			}
			return Object(fields), nil
		case '[':
			var elems []Value
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Null(), err
				}
				elems = append(elems, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Null(), err
			}
			return Array(elems...), nil
		}
	}
	return Null(), fmt.Errorf("docvalue: unexpected token %v", tok)
}

// MarshalJSON renders the value back as plain JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindString:
		return json.Marshal(v.str)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		return json.Marshal(v.obj)
	}
	return nil, fmt.Errorf("docvalue: unknown kind %d", v.kind)
}
