// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package koji

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/luxfi/koji/xmlrpc"
)

// helloGreeting is the fixed argument of the "hello" call.
const helloGreeting = "Hello"

// Client talks to one Koji hub. It owns the hub endpoint and at most one
// session; concurrent logical sessions need separate clients. A Client is
// safe for concurrent use.
type Client struct {
	mu       sync.RWMutex
	hubURL   string   // plain endpoint
	endpoint string   // current target, session-qualified after login
	session  *Session // nil when anonymous

	codec     *xmlrpc.Codec
	transport *httpTransport
	log       *zap.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	tlsConfig  *tls.Config
	logger     *zap.Logger
	userAgent  string
	codec      *xmlrpc.Codec
}

// WithHTTPClient sets the HTTP client used for every call. The caller keeps
// ownership of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTLSConfig sets the TLS configuration of the default HTTP client. It
// is ignored together with WithHTTPClient.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// WithLogger sets the logger used for debug wire tracing.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithCodec replaces the wire codec. The default is xmlrpc.Default.
func WithCodec(c *xmlrpc.Codec) Option {
	return func(o *options) { o.codec = c }
}

// New returns a client targeting hubURL, for example
// "https://koji.fedoraproject.org/kojihub".
func New(hubURL string, opts ...Option) (*Client, error) {
	o := &options{
		logger:    zap.NewNop(),
		userAgent: DefaultUserAgent,
		codec:     xmlrpc.Default,
	}
	for _, opt := range opts {
		opt(o)
	}

	t := &httpTransport{
		client:    o.httpClient,
		userAgent: o.userAgent,
		log:       o.logger,
	}
	if t.client == nil {
		t.client = newHTTPClient(o.tlsConfig)
		t.owned = true
	}

	c := &Client{
		codec:     o.codec,
		transport: t,
		log:       o.logger,
	}
	if err := c.Configure(hubURL); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure points the client at a plain, unauthenticated hub endpoint.
// Any active session is dropped.
func (c *Client) Configure(hubURL string) error {
	if err := validateHubURL(hubURL); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hubURL = hubURL
	c.endpoint = hubURL
	c.session = nil
	return nil
}

func validateHubURL(hubURL string) error {
	if strings.TrimSpace(hubURL) == "" {
		return &InvalidEndpointError{URL: hubURL, Reason: "empty"}
	}
	u, err := url.Parse(hubURL)
	if err != nil {
		return &InvalidEndpointError{URL: hubURL, Reason: "unparsable", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InvalidEndpointError{URL: hubURL, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &InvalidEndpointError{URL: hubURL, Reason: "missing host"}
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return &InvalidEndpointError{URL: hubURL, Reason: "must not carry a query or fragment"}
	}
	return nil
}

// Login authenticates with a username and password, the only credential
// scheme the hub's XML-RPC API accepts. On success every later call
// targets the session-qualified endpoint. On failure the client is left
// exactly as it was.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	c.mu.RLock()
	hubURL := c.hubURL
	c.mu.RUnlock()

	result, err := c.invoke(ctx, hubURL, callLogin, xmlrpc.String(username), xmlrpc.String(password))
	if err != nil {
		return Session{}, &AuthenticationError{User: username, Err: err}
	}
	s, err := newSession(result)
	if err != nil {
		return Session{}, &AuthenticationError{User: username, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hubURL != hubURL {
		return Session{}, &AuthenticationError{User: username, Err: errors.New("hub endpoint changed during login")}
	}
	c.session = &s
	c.endpoint = s.AuthenticatedURL(hubURL)
	c.log.Debug("koji session established", zap.String("user", username), zap.String("session", s.String()))
	return s, nil
}

// Logout ends the active session on the hub and returns to the plain
// endpoint. Without a session it does nothing. If the hub call fails the
// session is kept.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.RLock()
	s, endpoint := c.session, c.endpoint
	c.mu.RUnlock()
	if s == nil {
		return nil
	}

	if _, err := c.invoke(ctx, endpoint, callLogout); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == s {
		c.session = nil
		c.endpoint = c.hubURL
	}
	return nil
}

// Ping greets the hub and returns a confirmation naming the endpoint and
// the hub's answer.
func (c *Client) Ping(ctx context.Context) (string, error) {
	result, err := c.call(ctx, callHello, xmlrpc.String(helloGreeting))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Hello Koji server running at %s\nKoji: %s", c.HubURL(), text(result)), nil
}

// LatestBuild returns the latest build of pkg in tag, with tag inheritance
// as the hub applies it. An empty answer is a *NotFoundError.
func (c *Client) LatestBuild(ctx context.Context, tag, pkg string) (BuildRecord, error) {
	// The event parameter is always None: queries run against the current
	// state, never a historical event.
	result, err := c.call(ctx, callGetLatestBuilds, xmlrpc.String(tag), xmlrpc.Nil(), xmlrpc.String(pkg))
	if err != nil {
		return nil, err
	}
	items, _ := result.AsArray()
	if len(items) == 0 {
		return nil, &NotFoundError{Method: callGetLatestBuilds.name, Query: fmt.Sprintf("tag %q package %q", tag, pkg)}
	}
	rec, err := newBuildRecord(items[0])
	if err != nil {
		return nil, &TransportError{Method: callGetLatestBuilds.name, Err: err}
	}
	return rec, nil
}

// BuildID identifies a build for BuildInfo: a BuildNumber or a BuildNVR.
type BuildID interface {
	param() xmlrpc.Value
	String() string
}

// BuildNumber is the hub's numeric build id.
type BuildNumber int64

func (n BuildNumber) param() xmlrpc.Value { return xmlrpc.Int(int64(n)) }
func (n BuildNumber) String() string      { return strconv.FormatInt(int64(n), 10) }

// BuildNVR is a name-version-release string such as
// "kernel-3.15.0-0.rc3.git5.3.fc21".
type BuildNVR string

func (s BuildNVR) param() xmlrpc.Value { return xmlrpc.String(string(s)) }
func (s BuildNVR) String() string      { return string(s) }

// ParseBuildID returns a BuildNumber for an all-digit identifier and a
// BuildNVR otherwise.
func ParseBuildID(s string) BuildID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return BuildNumber(n)
	}
	return BuildNVR(s)
}

// BuildInfo returns the hub's record of one build. A None answer is a
// *NotFoundError.
func (c *Client) BuildInfo(ctx context.Context, id BuildID) (BuildRecord, error) {
	v, err := c.BuildInfoValue(ctx, id)
	if err != nil {
		return nil, err
	}
	rec, err := newBuildRecord(v)
	if err != nil {
		return nil, &TransportError{Method: callGetBuild.name, Err: err}
	}
	return rec, nil
}

// BuildInfoValue is BuildInfo without normalization: the struct exactly as
// decoded, including None and compound members.
func (c *Client) BuildInfoValue(ctx context.Context, id BuildID) (xmlrpc.Value, error) {
	if id == nil {
		return xmlrpc.Value{}, &TransportError{Method: callGetBuild.name, Err: errors.New("nil build id")}
	}
	result, err := c.call(ctx, callGetBuild, id.param())
	if err != nil {
		return xmlrpc.Value{}, err
	}
	if result.IsNil() {
		return xmlrpc.Value{}, &NotFoundError{Method: callGetBuild.name, Query: "build " + strconv.Quote(id.String())}
	}
	return result, nil
}

// ListTaggedBuilds lists builds tagged with params' tag, inheritance off.
// A None answer is a *NotFoundError; an empty list is a valid result.
func (c *Client) ListTaggedBuilds(ctx context.Context, params BuildQueryParams) ([]BuildRecord, error) {
	result, err := c.call(ctx, callListTagged,
		params.tag.param(),
		xmlrpc.Nil(),       // event
		xmlrpc.Bool(false), // inherit
		xmlrpc.Nil(),       // prefix
		xmlrpc.Bool(params.latest),
		params.pkg.param(),
		params.owner.param(),
		params.typ.param(),
	)
	if err != nil {
		return nil, err
	}
	if result.IsNil() {
		tag, _ := params.Tag()
		return nil, &NotFoundError{Method: callListTagged.name, Query: "tag " + strconv.Quote(tag)}
	}
	items, _ := result.AsArray()
	recs, err := newBuildRecords(items)
	if err != nil {
		return nil, &TransportError{Method: callListTagged.name, Err: err}
	}
	return recs, nil
}

// ShowSession asks the hub to describe the session it associates with
// this client's requests.
func (c *Client) ShowSession(ctx context.Context) (string, error) {
	result, err := c.call(ctx, callShowSession)
	if err != nil {
		return "", err
	}
	s, _ := result.AsString()
	return s, nil
}

// Session describes the active session for debugging. It reports false
// when the client is anonymous.
func (c *Client) Session() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", false
	}
	return c.session.String() + " on " + c.hubURL, true
}

// HubURL returns the plain hub endpoint.
func (c *Client) HubURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hubURL
}

// Endpoint returns the current call target with the session key masked.
func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return redactURL(c.endpoint)
}

// Close releases idle connections of a client-owned HTTP client.
func (c *Client) Close() error {
	c.transport.close()
	return nil
}

func text(v xmlrpc.Value) string {
	if s, ok := v.Scalar(); ok {
		return s
	}
	return v.String()
}
