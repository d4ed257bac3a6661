// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// NilTag is the leaf element carrying an absent value. Python hubs emit
// <nil/>; Apache peers emit <ex:nil/>. Both decode by local name.
const NilTag = "nil"

// NilExtension adds the <nil/> leaf to the value grammar. It may only
// appear directly inside <value> and never carries content.
type NilExtension struct{}

func (NilExtension) EncodeValue(buf *bytes.Buffer, v Value) (bool, error) {
	if !v.IsNil() {
		return false, nil
	}
	buf.WriteString("<value><" + NilTag + "/></value>")
	return true, nil
}

func (NilExtension) DecodeValue(d *xml.Decoder, start xml.StartElement) (Value, bool, error) {
	if start.Name.Local != NilTag {
		return Value{}, false, nil
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return Value{}, true, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return Nil(), true, nil
		case xml.StartElement:
			return Value{}, true, fmt.Errorf("%w: <%s> inside <%s>", ErrMalformed, t.Name.Local, NilTag)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return Value{}, true, fmt.Errorf("%w: text inside <%s>", ErrMalformed, NilTag)
			}
		}
	}
}
