package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for normalized dates.
const DateLayout = "2006-01-02"

type ValueKind int

const (
	KindNone ValueKind = iota
	KindDate
	KindAmount
	KindString
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindAmount:
		return "amount"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	}
	return "none"
}

// TypedValue is a tagged union over the normalized value kinds. The zero
// value is KindNone.
type TypedValue struct {
	kind   ValueKind
	date   time.Time
	amount decimal.Decimal
	text   string
	flag   bool
}

func NoValue() TypedValue { return TypedValue{} }

// DateValue truncates t to a UTC calendar date.
func DateValue(t time.Time) TypedValue {
	return TypedValue{kind: KindDate, date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func AmountValue(d decimal.Decimal) TypedValue { return TypedValue{kind: KindAmount, amount: d} }

func StringValue(s string) TypedValue { return TypedValue{kind: KindString, text: s} }

func BoolValue(b bool) TypedValue { return TypedValue{kind: KindBool, flag: b} }

func (v TypedValue) Kind() ValueKind { return v.kind }

func (v TypedValue) IsNone() bool { return v.kind == KindNone }

func (v TypedValue) Date() (time.Time, bool) { return v.date, v.kind == KindDate }

func (v TypedValue) Amount() (decimal.Decimal, bool) { return v.amount, v.kind == KindAmount }

func (v TypedValue) Text() (string, bool) { return v.text, v.kind == KindString }

func (v TypedValue) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// Equal compares kind and payload; amounts compare numerically.
func (v TypedValue) Equal(o TypedValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindDate:
		return v.date.Equal(o.date)
	case KindAmount:
		return v.amount.Equal(o.amount)
	case KindString:
		return v.text == o.text
	case KindBool:
		return v.flag == o.flag
	}
	return true
}

// Interface returns the JSON-facing representation: nil, a YYYY-MM-DD
// string, a two-place decimal string, a string or a bool.
func (v TypedValue) Interface() any {
	switch v.kind {
	case KindDate:
		return v.date.Format(DateLayout)
	case KindAmount:
		return v.amount.StringFixed(2)
	case KindString:
		return v.text
	case KindBool:
		return v.flag
	}
	return nil
}

func (v TypedValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
