// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package koji

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/luxfi/koji/xmlrpc"
)

// Result members of a successful "login" call.
const (
	sessionIDField  = "session-id"
	sessionKeyField = "session-key"
)

// Session is an authenticated hub session. Every call made after login
// carries the id and key as query parameters.
type Session struct {
	id  string
	key string
}

// NewSession builds a session from an already decoded id/key pair.
func NewSession(id, key string) Session {
	return Session{id: id, key: key}
}

// newSession extracts the session from a raw login result. The hub sends
// the id as an int and the key as a string; anything else is rejected.
func newSession(result xmlrpc.Value) (Session, error) {
	if _, ok := result.AsStruct(); !ok {
		return Session{}, &MalformedSessionError{Field: "login result", Reason: "is " + result.Kind().String() + ", not struct"}
	}

	rawID, ok := result.Member(sessionIDField)
	if !ok || rawID.IsNil() {
		return Session{}, &MalformedSessionError{Field: sessionIDField, Reason: "is missing"}
	}
	var id string
	switch rawID.Kind() {
	case xmlrpc.KindInt:
		n, _ := rawID.AsInt()
		id = strconv.FormatInt(n, 10)
	case xmlrpc.KindString:
		s, _ := rawID.AsString()
		if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
			return Session{}, &MalformedSessionError{Field: sessionIDField, Reason: "is not numeric: " + strconv.Quote(s)}
		}
		id = strings.TrimSpace(s)
	default:
		return Session{}, &MalformedSessionError{Field: sessionIDField, Reason: "has type " + rawID.Kind().String()}
	}

	rawKey, ok := result.Member(sessionKeyField)
	if !ok || rawKey.IsNil() {
		return Session{}, &MalformedSessionError{Field: sessionKeyField, Reason: "is missing"}
	}
	key, ok := rawKey.AsString()
	if !ok {
		return Session{}, &MalformedSessionError{Field: sessionKeyField, Reason: "has type " + rawKey.Kind().String()}
	}
	if key == "" {
		return Session{}, &MalformedSessionError{Field: sessionKeyField, Reason: "is empty"}
	}

	return Session{id: id, key: key}, nil
}

func (s Session) ID() string  { return s.id }
func (s Session) Key() string { return s.key }

// AuthenticatedURL returns hubURL with the session appended as a query
// string. Exactly one "/" precedes the "?". Values are UTF-8
// percent-encoded with url.QueryEscape.
func (s Session) AuthenticatedURL(hubURL string) string {
	var sb strings.Builder
	sb.WriteString(hubURL)
	if !strings.HasSuffix(hubURL, "/") {
		sb.WriteByte('/')
	}
	sb.WriteString("?" + sessionIDField + "=")
	sb.WriteString(url.QueryEscape(s.id))
	sb.WriteString("&" + sessionKeyField + "=")
	sb.WriteString(url.QueryEscape(s.key))
	return sb.String()
}

// String describes the session without exposing the key.
func (s Session) String() string {
	return "session " + s.id + " (key " + redact(s.key) + ")"
}

func redact(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + "****"
}
