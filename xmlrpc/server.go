// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xmlrpc

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/rpc/v2"
)

// ContentType is the media type of XML-RPC bodies.
const ContentType = "text/xml"

// Params holds the positional parameters of a call. Service methods served
// through a ServerCodec take *Params as args and *Value as reply:
//
//	func (h *Hub) GetBuild(r *http.Request, args *xmlrpc.Params, reply *xmlrpc.Value) error
type Params []Value

// ServerCodec plugs XML-RPC into a gorilla/rpc/v2 server. A wire method
// name such as "getBuild" is routed to "<service>.GetBuild".
type ServerCodec struct {
	codec   *Codec
	service string
}

// NewServerCodec returns a codec routing every call to the named service.
// A nil codec means Default.
func NewServerCodec(service string, codec *Codec) *ServerCodec {
	if codec == nil {
		codec = Default
	}
	return &ServerCodec{codec: codec, service: service}
}

func (c *ServerCodec) NewRequest(r *http.Request) rpc.CodecRequest {
	req := &serverRequest{codec: c.codec, service: c.service}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		req.err = fmt.Errorf("read request: %w", err)
		return req
	}
	req.method, req.params, req.err = c.codec.DecodeCall(body)
	return req
}

type serverRequest struct {
	codec   *Codec
	service string
	method  string
	params  []Value
	err     error
}

func (r *serverRequest) Method() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.service + "." + exported(r.method), nil
}

func (r *serverRequest) ReadRequest(args interface{}) error {
	if r.err != nil {
		return r.err
	}
	p, ok := args.(*Params)
	if !ok {
		return fmt.Errorf("xmlrpc: args must be *xmlrpc.Params, got %T", args)
	}
	*p = r.params
	return nil
}

func (r *serverRequest) WriteResponse(w http.ResponseWriter, reply interface{}) {
	v, ok := reply.(*Value)
	if !ok {
		r.WriteError(w, http.StatusInternalServerError, fmt.Errorf("xmlrpc: reply must be *xmlrpc.Value, got %T", reply))
		return
	}
	body, err := r.codec.EncodeResponse(*v)
	if err != nil {
		r.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	writeBody(w, body)
}

// WriteError reports err as an XML-RPC fault. Faults travel with HTTP 200;
// status becomes the fault code unless err already is a *Fault.
func (r *serverRequest) WriteError(w http.ResponseWriter, status int, err error) {
	var f *Fault
	if !errors.As(err, &f) {
		f = &Fault{Code: status, Message: err.Error()}
	}
	writeBody(w, r.codec.EncodeFault(f))
}

func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", ContentType+"; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func exported(method string) string {
	r, size := utf8.DecodeRuneInString(method)
	return string(unicode.ToUpper(r)) + method[size:]
}
