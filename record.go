// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package koji

import (
	"fmt"

	"github.com/luxfi/koji/xmlrpc"
)

// BuildRecord is the hub's description of one build: id, name, version,
// release, nvr, state, owner_name, creation_time, completion_time and so on.
// Scalars are rendered as text. Members the hub sent as None, and compound
// members such as "extra", are left out; BuildInfoValue exposes them.
type BuildRecord map[string]string

// NVR returns the name-version-release of the build, if present.
func (r BuildRecord) NVR() string { return r["nvr"] }

func newBuildRecord(v xmlrpc.Value) (BuildRecord, error) {
	members, ok := v.AsStruct()
	if !ok {
		return nil, fmt.Errorf("build record is %s, not struct", v.Kind())
	}
	rec := make(BuildRecord, len(members))
	for name, m := range members {
		if s, ok := m.Scalar(); ok {
			rec[name] = s
		}
	}
	return rec, nil
}

func newBuildRecords(items []xmlrpc.Value) ([]BuildRecord, error) {
	recs := make([]BuildRecord, 0, len(items))
	for i, it := range items {
		rec, err := newBuildRecord(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
