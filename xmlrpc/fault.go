// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xmlrpc

import (
	"fmt"
)

// Fault is an XML-RPC fault raised by the remote side.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Message)
}

func (f *Fault) value() Value {
	return Struct(map[string]Value{
		"faultCode":   Int(int64(f.Code)),
		"faultString": String(f.Message),
	})
}

// faultFromValue reads the faultCode/faultString struct. A fault body that
// does not match is still reported as a fault so the caller sees the
// remote failure rather than a decode error.
func faultFromValue(v Value) *Fault {
	f := &Fault{Message: v.String()}
	if code, ok := v.Member("faultCode"); ok {
		if n, ok := code.AsInt(); ok {
			f.Code = int(n)
		}
	}
	if msg, ok := v.Member("faultString"); ok {
		if s, ok := msg.AsString(); ok {
			f.Message = s
		}
	}
	return f
}
