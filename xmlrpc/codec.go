// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformed       = errors.New("xmlrpc: malformed document")
	ErrNilUnsupported  = errors.New("xmlrpc: nil has no representation without an extension")
	ErrUnsupportedType = errors.New("xmlrpc: unsupported value type")
)

const header = `<?xml version="1.0"?>` + "\n"

// Extension hooks a single value before the base codec handles it.
// Implementations report handled=false to fall through to the base codec.
type Extension interface {
	// EncodeValue writes a complete <value> element for v.
	EncodeValue(buf *bytes.Buffer, v Value) (handled bool, err error)

	// DecodeValue decodes the type element opened by start, which sits
	// directly inside a <value>. On success the element's end tag must
	// have been consumed.
	DecodeValue(d *xml.Decoder, start xml.StartElement) (v Value, handled bool, err error)
}

// Codec encodes method calls and decodes method responses. The zero Codec
// is the base protocol with no extensions.
type Codec struct {
	extensions []Extension
}

// NewCodec returns a codec that consults extensions, in order, before the
// base encoder and decoder.
func NewCodec(extensions ...Extension) *Codec {
	return &Codec{extensions: extensions}
}

var (
	// Base speaks plain XML-RPC.
	Base = NewCodec()

	// Default adds the <nil/> extension hubs rely on for absent values.
	Default = NewCodec(NilExtension{})
)

// EncodeCall serializes a methodCall document.
func (c *Codec) EncodeCall(method string, params []Value) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("<methodCall><methodName>")
	if err := xml.EscapeText(&buf, []byte(method)); err != nil {
		return nil, err
	}
	buf.WriteString("</methodName><params>")
	for i, p := range params {
		buf.WriteString("<param>")
		if err := c.encodeValue(&buf, p); err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		buf.WriteString("</param>")
	}
	buf.WriteString("</params></methodCall>\n")
	return buf.Bytes(), nil
}

// EncodeResponse serializes a successful methodResponse document.
func (c *Codec) EncodeResponse(result Value) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("<methodResponse><params><param>")
	if err := c.encodeValue(&buf, result); err != nil {
		return nil, err
	}
	buf.WriteString("</param></params></methodResponse>\n")
	return buf.Bytes(), nil
}

// EncodeFault serializes a fault methodResponse document.
func (c *Codec) EncodeFault(f *Fault) []byte {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("<methodResponse><fault>")
	// A fault struct only carries an int and a string, so it cannot fail.
	_ = c.encodeValue(&buf, f.value())
	buf.WriteString("</fault></methodResponse>\n")
	return buf.Bytes()
}

// EncodeValue serializes a single <value> element.
func (c *Codec) EncodeValue(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Codec) encodeValue(buf *bytes.Buffer, v Value) error {
	for _, ext := range c.extensions {
		handled, err := ext.EncodeValue(buf, v)
		if handled || err != nil {
			return err
		}
	}

	switch v.kind {
	case KindNil:
		return ErrNilUnsupported
	case KindString:
		buf.WriteString("<value><string>")
		if err := xml.EscapeText(buf, []byte(v.str)); err != nil {
			return err
		}
		buf.WriteString("</string></value>")
	case KindInt:
		tag := "int"
		if v.num > math.MaxInt32 || v.num < math.MinInt32 {
			tag = "i8"
		}
		fmt.Fprintf(buf, "<value><%s>%d</%s></value>", tag, v.num, tag)
	case KindBool:
		b := "0"
		if v.flag {
			b = "1"
		}
		buf.WriteString("<value><boolean>" + b + "</boolean></value>")
	case KindDouble:
		if math.IsNaN(v.flt) || math.IsInf(v.flt, 0) {
			return fmt.Errorf("%w: non-finite double", ErrUnsupportedType)
		}
		buf.WriteString("<value><double>" + strconv.FormatFloat(v.flt, 'f', -1, 64) + "</double></value>")
	case KindDateTime:
		buf.WriteString("<value><dateTime.iso8601>" + v.at.Format(DateTimeLayout) + "</dateTime.iso8601></value>")
	case KindBase64:
		buf.WriteString("<value><base64>" + base64.StdEncoding.EncodeToString(v.raw) + "</base64></value>")
	case KindArray:
		buf.WriteString("<value><array><data>")
		for i, it := range v.items {
			if err := c.encodeValue(buf, it); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		buf.WriteString("</data></array></value>")
	case KindStruct:
		names := make([]string, 0, len(v.members))
		for name := range v.members {
			names = append(names, name)
		}
		sort.Strings(names)
		buf.WriteString("<value><struct>")
		for _, name := range names {
			buf.WriteString("<member><name>")
			if err := xml.EscapeText(buf, []byte(name)); err != nil {
				return err
			}
			buf.WriteString("</name>")
			if err := c.encodeValue(buf, v.members[name]); err != nil {
				return fmt.Errorf("member %q: %w", name, err)
			}
			buf.WriteString("</member>")
		}
		buf.WriteString("</struct></value>")
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.kind)
	}
	return nil
}

// DecodeResponse parses a methodResponse document. A fault response is
// returned as a *Fault error.
func (c *Codec) DecodeResponse(data []byte) (Value, error) {
	d := c.newDecoder(data)
	if _, err := d.expectStart("methodResponse"); err != nil {
		return Value{}, err
	}
	start, err := d.nextStart()
	if err != nil {
		return Value{}, err
	}
	switch start.Name.Local {
	case "params":
		if _, err := d.expectStart("param"); err != nil {
			return Value{}, err
		}
		if _, err := d.expectStart("value"); err != nil {
			return Value{}, err
		}
		v, err := d.decodeValue()
		if err != nil {
			return Value{}, err
		}
		return v, d.expectEnds("param", "params", "methodResponse")
	case "fault":
		if _, err := d.expectStart("value"); err != nil {
			return Value{}, err
		}
		v, err := d.decodeValue()
		if err != nil {
			return Value{}, err
		}
		if err := d.expectEnds("fault", "methodResponse"); err != nil {
			return Value{}, err
		}
		return Value{}, faultFromValue(v)
	default:
		return Value{}, fmt.Errorf("%w: unexpected <%s> in methodResponse", ErrMalformed, start.Name.Local)
	}
}

// DecodeCall parses a methodCall document into its method name and
// positional parameters.
func (c *Codec) DecodeCall(data []byte) (string, []Value, error) {
	d := c.newDecoder(data)
	if _, err := d.expectStart("methodCall"); err != nil {
		return "", nil, err
	}
	if _, err := d.expectStart("methodName"); err != nil {
		return "", nil, err
	}
	method, err := d.text()
	if err != nil {
		return "", nil, err
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return "", nil, fmt.Errorf("%w: empty methodName", ErrMalformed)
	}

	params := []Value{}
	tok, err := d.next()
	if err != nil {
		return "", nil, err
	}
	if start, ok := tok.(xml.StartElement); ok {
		if start.Name.Local != "params" {
			return "", nil, fmt.Errorf("%w: unexpected <%s> in methodCall", ErrMalformed, start.Name.Local)
		}
		for {
			tok, err := d.next()
			if err != nil {
				return "", nil, err
			}
			if _, ok := tok.(xml.EndElement); ok {
				break
			}
			if se := tok.(xml.StartElement); se.Name.Local != "param" {
				return "", nil, fmt.Errorf("%w: unexpected <%s> in params", ErrMalformed, se.Name.Local)
			}
			if _, err := d.expectStart("value"); err != nil {
				return "", nil, err
			}
			v, err := d.decodeValue()
			if err != nil {
				return "", nil, err
			}
			if err := d.expectEnds("param"); err != nil {
				return "", nil, err
			}
			params = append(params, v)
		}
		if err := d.expectEnds("methodCall"); err != nil {
			return "", nil, err
		}
	}
	return method, params, nil
}

// DecodeValue parses a single <value> element.
func (c *Codec) DecodeValue(data []byte) (Value, error) {
	d := c.newDecoder(data)
	if _, err := d.expectStart("value"); err != nil {
		return Value{}, err
	}
	return d.decodeValue()
}

type decoder struct {
	*xml.Decoder
	extensions []Extension
}

func (c *Codec) newDecoder(data []byte) *decoder {
	return &decoder{
		Decoder:    xml.NewDecoder(bytes.NewReader(data)),
		extensions: c.extensions,
	}
}

// next returns the next start or end element. Blank text, comments and
// processing instructions are skipped.
func (d *decoder) next() (xml.Token, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement, xml.EndElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return nil, fmt.Errorf("%w: unexpected text %q", ErrMalformed, string(t))
			}
		}
	}
}

func (d *decoder) nextStart() (xml.StartElement, error) {
	tok, err := d.next()
	if err != nil {
		return xml.StartElement{}, err
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return xml.StartElement{}, fmt.Errorf("%w: unexpected %s", ErrMalformed, describe(tok))
	}
	return start, nil
}

func (d *decoder) expectStart(name string) (xml.StartElement, error) {
	start, err := d.nextStart()
	if err != nil {
		return start, err
	}
	if start.Name.Local != name {
		return start, fmt.Errorf("%w: expected <%s>, got <%s>", ErrMalformed, name, start.Name.Local)
	}
	return start, nil
}

func (d *decoder) expectEnds(names ...string) error {
	for _, name := range names {
		tok, err := d.next()
		if err != nil {
			return err
		}
		end, ok := tok.(xml.EndElement)
		if !ok || end.Name.Local != name {
			return fmt.Errorf("%w: expected </%s>, got %s", ErrMalformed, name, describe(tok))
		}
	}
	return nil
}

// text reads character data up to the end of the current element.
func (d *decoder) text() (string, error) {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String(), nil
		case xml.StartElement:
			return "", fmt.Errorf("%w: unexpected <%s> in text", ErrMalformed, t.Name.Local)
		}
	}
}

// decodeValue decodes the body of a <value> whose start tag has been read,
// consuming its end tag.
func (d *decoder) decodeValue() (Value, error) {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			// A <value> without a type element is a string.
			return String(sb.String()), nil
		case xml.StartElement:
			if strings.TrimSpace(sb.String()) != "" {
				return Value{}, fmt.Errorf("%w: mixed content in <value>", ErrMalformed)
			}
			v, err := d.decodeTyped(t)
			if err != nil {
				return Value{}, err
			}
			return v, d.expectEnds("value")
		}
	}
}

func (d *decoder) decodeTyped(start xml.StartElement) (Value, error) {
	for _, ext := range d.extensions {
		v, handled, err := ext.DecodeValue(d.Decoder, start)
		if err != nil {
			return Value{}, err
		}
		if handled {
			return v, nil
		}
	}

	name := start.Name.Local
	switch name {
	case "array":
		return d.decodeArray()
	case "struct":
		return d.decodeStruct()
	}

	s, err := d.text()
	if err != nil {
		return Value{}, err
	}
	switch name {
	case "string":
		return String(s), nil
	case "int", "i4", "i8", "i2", "i1":
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: bad <%s>: %v", ErrMalformed, name, err)
		}
		return Int(n), nil
	case "boolean":
		switch strings.TrimSpace(s) {
		case "1":
			return Bool(true), nil
		case "0":
			return Bool(false), nil
		}
		return Value{}, fmt.Errorf("%w: bad <boolean> %q", ErrMalformed, s)
	case "double":
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: bad <double>: %v", ErrMalformed, err)
		}
		return Double(f), nil
	case "dateTime.iso8601":
		t, err := parseDateTime(strings.TrimSpace(s))
		if err != nil {
			return Value{}, err
		}
		return DateTime(t), nil
	case "base64":
		raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(s), ""))
		if err != nil {
			return Value{}, fmt.Errorf("%w: bad <base64>: %v", ErrMalformed, err)
		}
		return Base64(raw), nil
	default:
		return Value{}, fmt.Errorf("%w: <%s>", ErrUnsupportedType, name)
	}
}

func (d *decoder) decodeArray() (Value, error) {
	if _, err := d.expectStart("data"); err != nil {
		return Value{}, err
	}
	items := []Value{}
	for {
		tok, err := d.next()
		if err != nil {
			return Value{}, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if err := d.expectEnds("array"); err != nil {
				return Value{}, err
			}
			return Array(items...), nil
		case xml.StartElement:
			if t.Name.Local != "value" {
				return Value{}, fmt.Errorf("%w: unexpected <%s> in array", ErrMalformed, t.Name.Local)
			}
			v, err := d.decodeValue()
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
	}
}

func (d *decoder) decodeStruct() (Value, error) {
	members := map[string]Value{}
	for {
		tok, err := d.next()
		if err != nil {
			return Value{}, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return Struct(members), nil
		case xml.StartElement:
			if t.Name.Local != "member" {
				return Value{}, fmt.Errorf("%w: unexpected <%s> in struct", ErrMalformed, t.Name.Local)
			}
			name, v, err := d.decodeMember()
			if err != nil {
				return Value{}, err
			}
			members[name] = v
		}
	}
}

func (d *decoder) decodeMember() (string, Value, error) {
	var name string
	var v Value
	var gotName, gotValue bool
	for {
		tok, err := d.next()
		if err != nil {
			return "", Value{}, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if !gotName || !gotValue {
				return "", Value{}, fmt.Errorf("%w: incomplete struct member", ErrMalformed)
			}
			return name, v, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				if name, err = d.text(); err != nil {
					return "", Value{}, err
				}
				gotName = true
			case "value":
				if v, err = d.decodeValue(); err != nil {
					return "", Value{}, err
				}
				gotValue = true
			default:
				return "", Value{}, fmt.Errorf("%w: unexpected <%s> in member", ErrMalformed, t.Name.Local)
			}
		}
	}
}

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"20060102T15:04:05Z07:00",
	time.RFC3339,
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad <dateTime.iso8601> %q", ErrMalformed, s)
}

func describe(tok xml.Token) string {
	switch t := tok.(type) {
	case xml.StartElement:
		return "<" + t.Name.Local + ">"
	case xml.EndElement:
		return "</" + t.Name.Local + ">"
	default:
		return fmt.Sprintf("%T", tok)
	}
}
