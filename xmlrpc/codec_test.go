// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xmlrpc

import (
	"errors"
	"testing"
	"time"
)

func TestNilRoundTrip(t *testing.T) {
	data, err := Default.EncodeValue(Nil())
	if err != nil {
		t.Fatalf("EncodeValue: %v", err)
	}
	if got, want := string(data), "<value><nil/></value>"; got != want {
		t.Fatalf("encoded %q, want %q", got, want)
	}

	v, err := Default.DecodeValue(data)
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if !v.Equal(Nil()) {
		t.Fatalf("decoded %s, want None", v)
	}
}

func TestBaseCodecHasNoNil(t *testing.T) {
	if _, err := Base.EncodeValue(Nil()); !errors.Is(err, ErrNilUnsupported) {
		t.Fatalf("encode nil: got %v, want ErrNilUnsupported", err)
	}
	if _, err := Base.DecodeValue([]byte("<value><nil/></value>")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("decode nil: got %v, want ErrUnsupportedType", err)
	}
	// Everything else still works without the extension.
	v, err := Base.DecodeValue([]byte("<value><int>7</int></value>"))
	if err != nil {
		t.Fatalf("decode int: %v", err)
	}
	if n, ok := v.AsInt(); !ok || n != 7 {
		t.Fatalf("decoded %s, want 7", v)
	}
}

func TestNilExtensionDecoding(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "self-closing", in: "<value><nil/></value>"},
		{name: "open-close", in: "<value><nil></nil></value>"},
		{name: "apache prefix", in: "<value><ex:nil/></value>"},
		{name: "whitespace", in: "<value>\n  <nil/>\n</value>"},
		{name: "text content", in: "<value><nil>x</nil></value>", wantErr: true},
		{name: "child element", in: "<value><nil><int>1</int></nil></value>", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Default.DecodeValue([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", v)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeValue: %v", err)
			}
			if !v.IsNil() {
				t.Fatalf("decoded %s, want None", v)
			}
		})
	}
}

func TestValueRoundTrip(t *testing.T) {
	when := time.Date(2014, 5, 6, 12, 30, 15, 0, time.UTC)
	tests := []struct {
		name string
		v    Value
	}{
		{"string", String("kernel-3.15.0-0.rc3.git5.3.fc21")},
		{"escaped string", String(`<a & "b">`)},
		{"empty string", String("")},
		{"int", Int(-42)},
		{"i8", Int(1 << 40)},
		{"bool", Bool(true)},
		{"double", Double(1.5)},
		{"datetime", DateTime(when)},
		{"base64", Base64([]byte{0, 1, 2, 0xff})},
		{"empty array", Array()},
		{"nested", Array(
			Int(1),
			Nil(),
			Struct(map[string]Value{
				"nvr":             String("pkg-1.0-1"),
				"completion_time": Nil(),
				"extra":           Struct(nil),
				"tags":            Array(String("f21"), String("f21-updates")),
			}),
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Default.EncodeValue(tt.v)
			if err != nil {
				t.Fatalf("EncodeValue: %v", err)
			}
			got, err := Default.DecodeValue(data)
			if err != nil {
				t.Fatalf("DecodeValue(%s): %v", data, err)
			}
			if !got.Equal(tt.v) {
				t.Fatalf("round trip: got %s, want %s", got, tt.v)
			}
		})
	}
}

func TestEmptyDistinctFromNil(t *testing.T) {
	empty, err := Default.DecodeValue([]byte("<value><array><data></data></array></value>"))
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if empty.IsNil() {
		t.Fatal("empty array decoded as None")
	}
	if items, ok := empty.AsArray(); !ok || len(items) != 0 {
		t.Fatalf("got %s, want []", empty)
	}

	untyped, err := Default.DecodeValue([]byte("<value></value>"))
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if s, ok := untyped.AsString(); !ok || s != "" {
		t.Fatalf("untyped empty value: got %s, want \"\"", untyped)
	}
}

func TestEncodeCall(t *testing.T) {
	data, err := Default.EncodeCall("getLatestBuilds", []Value{String("f21"), Nil(), String("kernel")})
	if err != nil {
		t.Fatalf("EncodeCall: %v", err)
	}
	want := `<?xml version="1.0"?>` + "\n" +
		"<methodCall><methodName>getLatestBuilds</methodName><params>" +
		"<param><value><string>f21</string></value></param>" +
		"<param><value><nil/></value></param>" +
		"<param><value><string>kernel</string></value></param>" +
		"</params></methodCall>\n"
	if string(data) != want {
		t.Fatalf("got\n%s\nwant\n%s", data, want)
	}

	if _, err := Base.EncodeCall("getLatestBuilds", []Value{String("f21"), Nil()}); !errors.Is(err, ErrNilUnsupported) {
		t.Fatalf("base codec: got %v, want ErrNilUnsupported", err)
	}
}

func TestDecodeCallRoundTrip(t *testing.T) {
	params := []Value{String("f21"), Nil(), Bool(false), Nil(), Bool(true), String("kernel"), Nil(), Nil()}
	data, err := Default.EncodeCall("listTagged", params)
	if err != nil {
		t.Fatalf("EncodeCall: %v", err)
	}
	method, got, err := Default.DecodeCall(data)
	if err != nil {
		t.Fatalf("DecodeCall: %v", err)
	}
	if method != "listTagged" {
		t.Fatalf("method %q", method)
	}
	if len(got) != len(params) {
		t.Fatalf("got %d params, want %d", len(got), len(params))
	}
	for i := range params {
		if !got[i].Equal(params[i]) {
			t.Errorf("param %d: got %s, want %s", i, got[i], params[i])
		}
	}
}

func TestDecodeKojiResponse(t *testing.T) {
	body := `<?xml version='1.0'?>
<methodResponse>
<params>
<param>
<value><array><data>
<value><struct>
<member>
<name>build_id</name>
<value><int>532911</int></value>
</member>
<member>
<name>nvr</name>
<value><string>kernel-3.15.0-0.rc3.git5.3.fc21</string></value>
</member>
<member>
<name>completion_ts</name>
<value><nil/></value>
</member>
<member>
<name>size</name>
<value><i8>8589934592</i8></value>
</member>
<member>
<name>owner_name</name>
<value>jwboyer</value>
</member>
</struct></value>
</data></array></value>
</param>
</params>
</methodResponse>
`
	v, err := Default.DecodeResponse([]byte(body))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	items, ok := v.AsArray()
	if !ok || len(items) != 1 {
		t.Fatalf("got %s, want one build", v)
	}
	b := items[0]
	if id, _ := b.Member("build_id"); !id.Equal(Int(532911)) {
		t.Errorf("build_id = %s", id)
	}
	if nvr, _ := b.Member("nvr"); !nvr.Equal(String("kernel-3.15.0-0.rc3.git5.3.fc21")) {
		t.Errorf("nvr = %s", nvr)
	}
	if ts, ok := b.Member("completion_ts"); !ok || !ts.IsNil() {
		t.Errorf("completion_ts = %s", ts)
	}
	if size, _ := b.Member("size"); !size.Equal(Int(8589934592)) {
		t.Errorf("size = %s", size)
	}
	if owner, _ := b.Member("owner_name"); !owner.Equal(String("jwboyer")) {
		t.Errorf("owner_name = %s", owner)
	}
}

func TestDecodeFault(t *testing.T) {
	body := Default.EncodeFault(&Fault{Code: 1002, Message: "AuthError: bad password"})
	_, err := Default.DecodeResponse(body)
	var f *Fault
	if !errors.As(err, &f) {
		t.Fatalf("got %v, want *Fault", err)
	}
	if f.Code != 1002 || f.Message != "AuthError: bad password" {
		t.Fatalf("got fault %d %q", f.Code, f.Message)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := map[string]string{
		"not xml":         "hello",
		"wrong root":      "<methodCall/>",
		"no params":       "<methodResponse></methodResponse>",
		"bad int":         "<methodResponse><params><param><value><int>x</int></value></param></params></methodResponse>",
		"bad boolean":     "<methodResponse><params><param><value><boolean>yes</boolean></value></param></params></methodResponse>",
		"unknown type":    "<methodResponse><params><param><value><bigdecimal>1</bigdecimal></value></param></params></methodResponse>",
		"member no value": "<methodResponse><params><param><value><struct><member><name>a</name></member></struct></value></param></params></methodResponse>",
		"truncated":       "<methodResponse><params><param><value><string>abc",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if v, err := Default.DecodeResponse([]byte(body)); err == nil {
				t.Fatalf("expected error, got %s", v)
			}
		})
	}
}

func TestValueScalar(t *testing.T) {
	tests := []struct {
		v    Value
		want string
		ok   bool
	}{
		{String("x"), "x", true},
		{Int(123), "123", true},
		{Bool(false), "false", true},
		{Double(0.25), "0.25", true},
		{DateTime(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)), "20200102T03:04:05", true},
		{Nil(), "", false},
		{Array(), "", false},
		{Struct(nil), "", false},
	}
	for _, tt := range tests {
		got, ok := tt.v.Scalar()
		if got != tt.want || ok != tt.ok {
			t.Errorf("Scalar(%s) = %q, %v; want %q, %v", tt.v, got, ok, tt.want, tt.ok)
		}
	}
}
