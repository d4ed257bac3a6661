// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package koji

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/koji/xmlrpc"
)

// ErrArity is returned when a call is dispatched with the wrong number of
// positional parameters. Nothing is sent.
var ErrArity = errors.New("wrong number of parameters")

// ErrResultShape is returned when the hub answers with a value of a type
// the call never produces.
var ErrResultShape = errors.New("unexpected result type")

// shape is the set of result types a call may legitimately return.
type shape uint8

const (
	shapeAny shape = iota
	shapeString
	shapeStructOrNil
	shapeArrayOrNil
)

func (s shape) accepts(v xmlrpc.Value) bool {
	switch s {
	case shapeString:
		return v.Kind() == xmlrpc.KindString
	case shapeStructOrNil:
		return v.IsNil() || v.Kind() == xmlrpc.KindStruct
	case shapeArrayOrNil:
		return v.IsNil() || v.Kind() == xmlrpc.KindArray
	default:
		return true
	}
}

// call describes one hub method. The supported surface is the closed set
// declared below.
type call struct {
	name  string
	arity int
	shape shape

	// sensitive calls carry credentials or session secrets; their bodies
	// are never traced.
	sensitive bool
}

var (
	// login(user, password)
	callLogin = call{name: "login", arity: 2, shape: shapeStructOrNil, sensitive: true}

	// logout()
	callLogout = call{name: "logout", arity: 0, shape: shapeAny}

	// hello(*args)
	callHello = call{name: "hello", arity: 1, shape: shapeAny}

	// showSession()
	callShowSession = call{name: "showSession", arity: 0, shape: shapeString}

	// getLatestBuilds(tag, event=None, package=None)
	callGetLatestBuilds = call{name: "getLatestBuilds", arity: 3, shape: shapeArrayOrNil}

	// getBuild(buildInfo)
	callGetBuild = call{name: "getBuild", arity: 1, shape: shapeStructOrNil}

	// listTagged(tag, event=None, inherit=False, prefix=None, latest=False,
	// package=None, owner=None, type=None)
	callListTagged = call{name: "listTagged", arity: 8, shape: shapeArrayOrNil}
)

// invoke is the single dispatch path for every hub call: it encodes params,
// posts them to endpoint and decodes the result. There are no retries.
func (c *Client) invoke(ctx context.Context, endpoint string, desc call, params ...xmlrpc.Value) (xmlrpc.Value, error) {
	if len(params) != desc.arity {
		return xmlrpc.Value{}, &TransportError{
			Method: desc.name,
			Err:    fmt.Errorf("%w: want %d, got %d", ErrArity, desc.arity, len(params)),
		}
	}
	if endpoint == "" {
		return xmlrpc.Value{}, &InvalidEndpointError{Reason: "no hub endpoint configured"}
	}

	body, err := c.codec.EncodeCall(desc.name, params)
	if err != nil {
		return xmlrpc.Value{}, &TransportError{Method: desc.name, Err: fmt.Errorf("encode params: %w", err)}
	}

	resp, err := c.transport.post(ctx, endpoint, desc, body)
	if err != nil {
		return xmlrpc.Value{}, &TransportError{Method: desc.name, Err: err}
	}

	result, err := c.codec.DecodeResponse(resp)
	if err != nil {
		var fault *xmlrpc.Fault
		if errors.As(err, &fault) {
			return xmlrpc.Value{}, &TransportError{Method: desc.name, Err: fault}
		}
		return xmlrpc.Value{}, &TransportError{Method: desc.name, Err: fmt.Errorf("decode response: %w", err)}
	}

	if !desc.shape.accepts(result) {
		return xmlrpc.Value{}, &TransportError{
			Method: desc.name,
			Err:    fmt.Errorf("%w: %s", ErrResultShape, result.Kind()),
		}
	}
	return result, nil
}

// call dispatches to the current endpoint. The endpoint is read once, so a
// concurrent login cannot retarget a call already in flight.
func (c *Client) call(ctx context.Context, desc call, params ...xmlrpc.Value) (xmlrpc.Value, error) {
	c.mu.RLock()
	endpoint := c.endpoint
	c.mu.RUnlock()
	return c.invoke(ctx, endpoint, desc, params...)
}
