// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xmlrpc

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/rpc/v2"
)

type EchoService struct{}

func (EchoService) Echo(r *http.Request, args *Params, reply *Value) error {
	*reply = Array(*args...)
	return nil
}

func (EchoService) Refuse(r *http.Request, args *Params, reply *Value) error {
	return &Fault{Code: 1000, Message: "GenericError: refused"}
}

func (EchoService) Broken(r *http.Request, args *Params, reply *Value) error {
	return errors.New("boom")
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := rpc.NewServer()
	s.RegisterCodec(NewServerCodec("Echo", nil), ContentType)
	if err := s.RegisterService(EchoService{}, "Echo"); err != nil {
		t.Fatalf("RegisterService: %v", err)
	}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, method string, params ...Value) (Value, error) {
	t.Helper()
	body, err := Default.EncodeCall(method, params)
	if err != nil {
		t.Fatalf("EncodeCall: %v", err)
	}
	resp, err := http.Post(url, ContentType, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return Default.DecodeResponse(data)
}

func TestServerCodecEcho(t *testing.T) {
	srv := newEchoServer(t)

	got, err := post(t, srv.URL, "echo", String("f21"), Nil(), Int(3))
	if err != nil {
		t.Fatalf("echo: %v", err)
	}
	want := Array(String("f21"), Nil(), Int(3))
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestServerCodecFaults(t *testing.T) {
	srv := newEchoServer(t)

	tests := []struct {
		method   string
		wantCode int
	}{
		{"refuse", 1000},
		{"broken", http.StatusBadRequest},
		{"missing", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			_, err := post(t, srv.URL, tt.method)
			var f *Fault
			if !errors.As(err, &f) {
				t.Fatalf("got %v, want *Fault", err)
			}
			if f.Code != tt.wantCode {
				t.Fatalf("fault code %d, want %d", f.Code, tt.wantCode)
			}
		})
	}
}
