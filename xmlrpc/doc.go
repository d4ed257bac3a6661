// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package xmlrpc implements the XML-RPC value model and wire codec used to
// talk to Koji build hubs.
//
// Decoded values are a tagged variant (Value) rather than interface{}, so
// an absent value, an empty string and an empty array stay distinct.
//
// The base codec follows the published XML-RPC grammar, which has no
// representation for an absent value. Extensions are consulted before the
// base codec for every value; NilExtension adds the <nil/> leaf that
// Python hubs send for None. Default is the base codec plus NilExtension.
//
//	body, err := xmlrpc.Default.EncodeCall("getBuild", []xmlrpc.Value{xmlrpc.String("kernel-6.1.0-1.fc38")})
//	...
//	result, err := xmlrpc.Default.DecodeResponse(respBody)
//	if result.IsNil() {
//	    // hub returned None
//	}
//
// ServerCodec serves the same grammar through a gorilla/rpc/v2 server.
package xmlrpc
