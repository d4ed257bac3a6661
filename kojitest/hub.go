// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package kojitest provides an in-process Koji hub for tests.
//
// The hub is a gorilla/rpc/v2 server speaking XML-RPC through
// xmlrpc.ServerCodec. Every method answers from a handler that tests can
// replace with Handle or Return; login, logout, hello and showSession have
// working defaults backed by a small user and session table.
package kojitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/rpc/v2"

	"github.com/luxfi/koji/xmlrpc"
)

// Path is where the hub serves XML-RPC.
const Path = "/kojihub"

// AuthErrorCode is the fault code Koji uses for authentication failures.
const AuthErrorCode = 1002

// HandlerFunc answers one hub method.
type HandlerFunc func(r *http.Request, params []xmlrpc.Value) (xmlrpc.Value, error)

// Call is one request the hub received.
type Call struct {
	Method     string
	Params     []xmlrpc.Value
	Path       string
	SessionID  string
	SessionKey string
}

// Hub is a fake Koji hub listening on a local port.
type Hub struct {
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
	users    map[string]string
	sessions map[string]hubSession // keyed by session id
	nextID   int64
}

type hubSession struct {
	user string
	key  string
}

// NewHub starts a hub. Call Close when done.
func NewHub() *Hub {
	h := &Hub{
		handlers: map[string]HandlerFunc{},
		users:    map[string]string{},
		sessions: map[string]hubSession{},
		nextID:   41,
	}
	h.handlers["login"] = h.login
	h.handlers["logout"] = h.logout
	h.handlers["hello"] = func(*http.Request, []xmlrpc.Value) (xmlrpc.Value, error) {
		return xmlrpc.String("Hello World"), nil
	}
	h.handlers["showSession"] = h.showSession
	h.handlers["getLatestBuilds"] = constant(xmlrpc.Array())
	h.handlers["getBuild"] = constant(xmlrpc.Nil())
	h.handlers["listTagged"] = constant(xmlrpc.Array())

	s := rpc.NewServer()
	s.RegisterCodec(xmlrpc.NewServerCodec("Hub", xmlrpc.Default), xmlrpc.ContentType)
	if err := s.RegisterService(&Service{hub: h}, "Hub"); err != nil {
		panic(fmt.Sprintf("kojitest: register service: %v", err))
	}
	h.server = httptest.NewServer(s)
	return h
}

// URL returns the plain hub endpoint.
func (h *Hub) URL() string { return h.server.URL + Path }

// Client returns an HTTP client for the hub's listener.
func (h *Hub) Client() *http.Client { return h.server.Client() }

func (h *Hub) Close() { h.server.Close() }

// Handle replaces the handler of method.
func (h *Hub) Handle(method string, fn HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[method] = fn
}

// Return makes method always answer v.
func (h *Hub) Return(method string, v xmlrpc.Value) {
	h.Handle(method, constant(v))
}

// Fail makes method always answer with a fault.
func (h *Hub) Fail(method string, code int, message string) {
	h.Handle(method, func(*http.Request, []xmlrpc.Value) (xmlrpc.Value, error) {
		return xmlrpc.Value{}, &xmlrpc.Fault{Code: code, Message: message}
	})
}

// AddUser registers credentials accepted by the default login handler.
func (h *Hub) AddUser(name, password string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users[name] = password
}

// Calls returns every call received so far, oldest first.
func (h *Hub) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Call, len(h.calls))
	copy(out, h.calls)
	return out
}

// LastCall returns the most recent call to method.
func (h *Hub) LastCall(method string) (Call, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.calls) - 1; i >= 0; i-- {
		if h.calls[i].Method == method {
			return h.calls[i], true
		}
	}
	return Call{}, false
}

func (h *Hub) dispatch(method string, r *http.Request, args *xmlrpc.Params, reply *xmlrpc.Value) error {
	q := r.URL.Query()
	h.mu.Lock()
	h.calls = append(h.calls, Call{
		Method:     method,
		Params:     []xmlrpc.Value(*args),
		Path:       r.URL.Path,
		SessionID:  q.Get("session-id"),
		SessionKey: q.Get("session-key"),
	})
	fn := h.handlers[method]
	h.mu.Unlock()

	if fn == nil {
		return &xmlrpc.Fault{Code: 1000, Message: "Invalid method: " + method}
	}
	v, err := fn(r, *args)
	if err != nil {
		return err
	}
	*reply = v
	return nil
}

func (h *Hub) login(_ *http.Request, params []xmlrpc.Value) (xmlrpc.Value, error) {
	if len(params) != 2 {
		return xmlrpc.Value{}, &xmlrpc.Fault{Code: 1000, Message: "login takes 2 arguments"}
	}
	user, _ := params[0].AsString()
	password, _ := params[1].AsString()

	h.mu.Lock()
	defer h.mu.Unlock()
	if want, ok := h.users[user]; !ok || want != password {
		return xmlrpc.Value{}, &xmlrpc.Fault{Code: AuthErrorCode, Message: "AuthError: invalid username or password"}
	}
	h.nextID++
	id := strconv.FormatInt(h.nextID, 10)
	key := uuid.NewString()
	h.sessions[id] = hubSession{user: user, key: key}
	return xmlrpc.Struct(map[string]xmlrpc.Value{
		"session-id":  xmlrpc.Int(h.nextID),
		"session-key": xmlrpc.String(key),
	}), nil
}

// authenticated returns the session named by the request's query.
func (h *Hub) authenticated(r *http.Request) (string, hubSession, bool) {
	q := r.URL.Query()
	id := q.Get("session-id")
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok || s.key != q.Get("session-key") {
		return "", hubSession{}, false
	}
	return id, s, true
}

func (h *Hub) logout(r *http.Request, _ []xmlrpc.Value) (xmlrpc.Value, error) {
	id, _, ok := h.authenticated(r)
	if !ok {
		return xmlrpc.Value{}, &xmlrpc.Fault{Code: AuthErrorCode, Message: "AuthError: not logged in"}
	}
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
	return xmlrpc.Nil(), nil
}

func (h *Hub) showSession(r *http.Request, _ []xmlrpc.Value) (xmlrpc.Value, error) {
	id, s, ok := h.authenticated(r)
	if !ok {
		return xmlrpc.String("session: anonymous"), nil
	}
	return xmlrpc.String(fmt.Sprintf("session %s: user=%s", id, s.user)), nil
}

func constant(v xmlrpc.Value) HandlerFunc {
	return func(*http.Request, []xmlrpc.Value) (xmlrpc.Value, error) { return v, nil }
}

// Service exposes the hub's methods to gorilla/rpc. Wire names map to Go
// names by upper-casing the first letter.
type Service struct {
	hub *Hub
}

func (s *Service) Login(r *http.Request, args *xmlrpc.Params, reply *xmlrpc.Value) error {
	return s.hub.dispatch("login", r, args, reply)
}

func (s *Service) Logout(r *http.Request, args *xmlrpc.Params, reply *xmlrpc.Value) error {
	return s.hub.dispatch("logout", r, args, reply)
}

func (s *Service) Hello(r *http.Request, args *xmlrpc.Params, reply *xmlrpc.Value) error {
	return s.hub.dispatch("hello", r, args, reply)
}

func (s *Service) ShowSession(r *http.Request, args *xmlrpc.Params, reply *xmlrpc.Value) error {
	return s.hub.dispatch("showSession", r, args, reply)
}

func (s *Service) GetLatestBuilds(r *http.Request, args *xmlrpc.Params, reply *xmlrpc.Value) error {
	return s.hub.dispatch("getLatestBuilds", r, args, reply)
}

func (s *Service) GetBuild(r *http.Request, args *xmlrpc.Params, reply *xmlrpc.Value) error {
	return s.hub.dispatch("getBuild", r, args, reply)
}

func (s *Service) ListTagged(r *http.Request, args *xmlrpc.Params, reply *xmlrpc.Value) error {
	return s.hub.dispatch("listTagged", r, args, reply)
}
