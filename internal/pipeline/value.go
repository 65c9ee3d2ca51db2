package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the pipeline value union.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindComposite:
		return "composite"
	}
	return "unknown"
}

// Value is the single type flowing between pipeline steps. JSON, XML and
// plain-text extraction all collapse into this union so every operator has a
// statically checkable input/output contract.
//
// A composite value carries the raw document text of an array or object;
// arrays additionally carry their decoded elements so array operators can
// index into them.
type Value struct {
	kind  Kind
	str   string
	num   float64
	b     bool
	t     time.Time
	items []Value
	raw   string
	isArr bool
}

func Null() Value            { return Value{kind: KindNull} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

func Array(items []Value, raw string) Value {
	return Value{kind: KindComposite, items: items, raw: raw, isArr: true}
}

func Object(raw string) Value { return Value{kind: KindComposite, raw: raw} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the string representation of the value. This is also the
// stored representation of a resolved field value.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindComposite:
		return v.raw
	}
	return ""
}

// AsNumber coerces the value to a decimal.
func (v Value) AsNumber() (float64, error) {
	switch v.kind {
	case KindNumber:
		return v.num, nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to number", v.str)
		}
		return f, nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot convert %s value to number", v.kind)
}

// AsInt coerces the value to an integer, truncating toward zero.
func (v Value) AsInt() (int64, error) {
	f, err := v.AsNumber()
	if err != nil {
		return 0, err
	}
	return int64(math.Trunc(f)), nil
}

// AsTime returns the timestamp payload; it does not parse strings.
func (v Value) AsTime() (time.Time, error) {
	if v.kind != KindTime {
		return time.Time{}, fmt.Errorf("value is %s, not a timestamp", v.kind)
	}
	return v.t, nil
}

// AsArray returns the elements of an array composite.
func (v Value) AsArray() ([]Value, error) {
	if v.kind != KindComposite || !v.isArr {
		return nil, fmt.Errorf("value is %s, not an array", v.kind)
	}
	return v.items, nil
}

// FormatNumber renders a decimal without trailing zeros (423.0 -> "423",
// 42.30 -> "42.3").
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
