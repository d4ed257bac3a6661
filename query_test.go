// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package koji

import (
	"testing"

	"github.com/luxfi/koji/xmlrpc"
)

func TestBuildQueryDefaults(t *testing.T) {
	p := NewBuildQuery().Build()
	for name, get := range map[string]func() (string, bool){
		"tag":     p.Tag,
		"package": p.PackageName,
		"owner":   p.Owner,
		"type":    p.Type,
	} {
		if v, ok := get(); ok {
			t.Errorf("%s set to %q by default", name, v)
		}
	}
	if p.Latest() {
		t.Error("latest defaults to true")
	}
	if !p.owner.param().IsNil() {
		t.Errorf("unset owner encodes as %s, want None", p.owner.param())
	}
}

func TestBuildQuerySetters(t *testing.T) {
	p := NewBuildQuery().Tag("f21").Package("kernel").Owner("").Type("rpm").Latest(true).Build()

	if v, ok := p.Tag(); !ok || v != "f21" {
		t.Errorf("tag = %q, %v", v, ok)
	}
	if v, ok := p.PackageName(); !ok || v != "kernel" {
		t.Errorf("package = %q, %v", v, ok)
	}
	// An explicitly empty owner is a literal match, not "unset".
	if v, ok := p.Owner(); !ok || v != "" {
		t.Errorf("owner = %q, %v", v, ok)
	}
	if !p.owner.param().Equal(xmlrpc.String("")) {
		t.Errorf("empty owner encodes as %s", p.owner.param())
	}
	if v, ok := p.Type(); !ok || v != "rpm" {
		t.Errorf("type = %q, %v", v, ok)
	}
	if !p.Latest() {
		t.Error("latest not set")
	}
}

func TestBuildQueryBuiltValuesAreIndependent(t *testing.T) {
	b := NewBuildQuery().Tag("f21")
	first := b.Build()
	b.Tag("f22").Latest(true)
	second := b.Build()

	if v, _ := first.Tag(); v != "f21" {
		t.Errorf("first tag changed to %q", v)
	}
	if first.Latest() {
		t.Error("first latest changed")
	}
	if v, _ := second.Tag(); v != "f22" {
		t.Errorf("second tag = %q", v)
	}
}
