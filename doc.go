// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package koji is a client for the XML-RPC API of a Koji build hub.
//
// # Sessions
//
// A Client starts anonymous. Login exchanges a username and password for a
// session; from then on every call targets the session-qualified endpoint
//
//	https://koji.example.org/kojihub/?session-id=42&session-key=...
//
// until Logout or Configure drops it. A Client holds at most one session.
//
// # Usage
//
//	client, err := koji.New("https://koji.fedoraproject.org/kojihub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	rec, err := client.LatestBuild(ctx, "f21", "kernel")
//	if errors.Is(err, &koji.NotFoundError{}) {
//	    // no such build
//	}
//
//	params := koji.NewBuildQuery().Tag("f21").Package("kernel").Latest(true).Build()
//	builds, err := client.ListTaggedBuilds(ctx, params)
//
// # Errors
//
// Failures are reported as *InvalidEndpointError, *TransportError,
// *AuthenticationError or *NotFoundError. A hub fault surfaces as a
// *TransportError wrapping an *xmlrpc.Fault. An empty answer is never
// reported as a transport failure.
//
// # Tracing
//
// With WithLogger, request and response bodies are logged at debug level.
// Login bodies and session keys are never logged.
package koji
