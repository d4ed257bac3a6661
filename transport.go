// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package koji

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/koji/xmlrpc"
)

// DefaultUserAgent is sent when no WithUserAgent option is given.
const DefaultUserAgent = "luxfi-koji/1.0"

// maxResponseSize bounds a single response body.
const maxResponseSize = 64 * 1024 * 1024

// newHTTPClient creates the client-owned HTTP client. It has no timeout;
// callers bound latency through the context.
func newHTTPClient(tlsConfig *tls.Config) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     tlsConfig,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// CleanlyCloseBody drains and closes an HTTP response body so the
// connection can be reused.
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

type httpTransport struct {
	client    *http.Client
	owned     bool
	userAgent string
	log       *zap.Logger
}

// post sends one XML-RPC request body and returns the raw response body.
// Request and response bodies are traced at debug level unless the call
// is sensitive.
func (t *httpTransport) post(ctx context.Context, endpoint string, desc call, body []byte) ([]byte, error) {
	target := redactURL(endpoint)
	if ce := t.log.Check(zap.DebugLevel, "koji request"); ce != nil {
		ce.Write(zap.String("method", desc.name), zap.String("endpoint", target), traceBody(desc, body))
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", xmlrpc.ContentType)
	request.Header.Set("Accept", xmlrpc.ContentType)
	request.Header.Set("User-Agent", t.userAgent)

	start := time.Now()
	resp, err := t.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to issue request: %w", err)
	}
	defer CleanlyCloseBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("received status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > maxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", maxResponseSize)
	}

	if ce := t.log.Check(zap.DebugLevel, "koji response"); ce != nil {
		ce.Write(
			zap.String("method", desc.name),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
			traceBody(desc, data),
		)
	}
	return data, nil
}

func (t *httpTransport) close() {
	if t.owned {
		t.client.CloseIdleConnections()
	}
}

func traceBody(desc call, body []byte) zap.Field {
	if desc.sensitive {
		return zap.String("body", "<redacted>")
	}
	return zap.ByteString("body", body)
}

// redactURL masks the session key of an authenticated endpoint.
func redactURL(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "<unparsable>"
	}
	q := u.Query()
	if key := q.Get(sessionKeyField); key != "" {
		q.Set(sessionKeyField, redact(key))
		u.RawQuery = q.Encode()
	}
	return u.String()
}
