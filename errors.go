// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package koji

import (
	"fmt"
)

// InvalidEndpointError reports a hub URL that cannot be used as a call
// target.
type InvalidEndpointError struct {
	URL    string
	Reason string
	Err    error
}

func (e *InvalidEndpointError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid hub endpoint %q: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid hub endpoint %q: %s", e.URL, e.Reason)
}

func (e *InvalidEndpointError) Unwrap() error { return e.Err }

// TransportError reports a failed round trip: network, HTTP status, codec
// or a hub fault (*xmlrpc.Fault, reachable through errors.As).
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("koji %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthenticationError reports a failed login. Err is a *TransportError or
// a *MalformedSessionError.
type AuthenticationError struct {
	User string
	Err  error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("koji login as %q failed: %v", e.User, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// NotFoundError reports that the hub answered with nothing for a query.
type NotFoundError struct {
	Method string
	Query  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("koji %s: nothing found for %s", e.Method, e.Query)
}

// Is matches any *NotFoundError, so callers can test against a zero value.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// MalformedSessionError reports a login result without a usable
// session-id or session-key.
type MalformedSessionError struct {
	Field  string
	Reason string
}

func (e *MalformedSessionError) Error() string {
	return fmt.Sprintf("malformed session: %s %s", e.Field, e.Reason)
}
