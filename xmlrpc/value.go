// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xmlrpc

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the wire type held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindString
	KindInt
	KindBool
	KindDouble
	KindDateTime
	KindBase64
	KindArray
	KindStruct
)

var kindNames = [...]string{
	KindNil:      "nil",
	KindString:   "string",
	KindInt:      "int",
	KindBool:     "boolean",
	KindDouble:   "double",
	KindDateTime: "dateTime.iso8601",
	KindBase64:   "base64",
	KindArray:    "array",
	KindStruct:   "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// DateTimeLayout is the dateTime.iso8601 layout used on the wire.
const DateTimeLayout = "20060102T15:04:05"

// Value is a decoded XML-RPC value. The zero Value is nil.
type Value struct {
	kind    Kind
	str     string
	num     int64
	flt     float64
	flag    bool
	at      time.Time
	raw     []byte
	items   []Value
	members map[string]Value
}

// Nil returns the absent value. The base codec cannot carry it; the
// NilExtension can.
func Nil() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func Int(i int64) Value { return Value{kind: KindInt, num: i} }

func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

func Double(f float64) Value { return Value{kind: KindDouble, flt: f} }

func DateTime(t time.Time) Value { return Value{kind: KindDateTime, at: t} }

func Base64(b []byte) Value { return Value{kind: KindBase64, raw: b} }

// Array builds an array value. A nil argument list yields an empty array,
// which is distinct from Nil().
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// Struct builds a struct value from members.
func Struct(members map[string]Value) Value {
	if members == nil {
		members = map[string]Value{}
	}
	return Value{kind: KindStruct, members: members}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsInt() (int64, bool) { return v.num, v.kind == KindInt }

func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

func (v Value) AsDouble() (float64, bool) { return v.flt, v.kind == KindDouble }

func (v Value) AsDateTime() (time.Time, bool) { return v.at, v.kind == KindDateTime }

func (v Value) AsBase64() ([]byte, bool) { return v.raw, v.kind == KindBase64 }

func (v Value) AsArray() ([]Value, bool) { return v.items, v.kind == KindArray }

func (v Value) AsStruct() (map[string]Value, bool) { return v.members, v.kind == KindStruct }

// Member returns the named struct member. It reports false when v is not a
// struct or the member is absent.
func (v Value) Member(name string) (Value, bool) {
	if v.kind != KindStruct {
		return Value{}, false
	}
	m, ok := v.members[name]
	return m, ok
}

// Scalar renders a scalar value as text. Nil and compound values report
// false.
func (v Value) Scalar() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindInt:
		return strconv.FormatInt(v.num, 10), true
	case KindBool:
		return strconv.FormatBool(v.flag), true
	case KindDouble:
		return strconv.FormatFloat(v.flt, 'f', -1, 64), true
	case KindDateTime:
		return v.at.Format(DateTimeLayout), true
	case KindBase64:
		return base64.StdEncoding.EncodeToString(v.raw), true
	default:
		return "", false
	}
}

// Equal reports deep equality of two values.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindDateTime:
		return v.at.Equal(o.at)
	case KindBase64:
		return string(v.raw) == string(o.raw)
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		if len(v.members) != len(o.members) {
			return false
		}
		for k, m := range v.members {
			om, ok := o.members[k]
			if !ok || !m.Equal(om) {
				return false
			}
		}
		return true
	default:
		return v.str == o.str && v.num == o.num && v.flt == o.flt && v.flag == o.flag
	}
}

// String renders v in a compact, Python-like notation for logs and errors.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "None"
	case KindString:
		return strconv.Quote(v.str)
	case KindArray:
		parts := make([]string, len(v.items))
		for i, it := range v.items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindStruct:
		keys := make([]string, 0, len(v.members))
		for k := range v.members {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%q: %s", k, v.members[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		s, _ := v.Scalar()
		return s
	}
}
