// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package koji

import (
	"github.com/luxfi/koji/xmlrpc"
)

// optString is a string that may be unset. Unset is sent as nil; an empty
// string would be matched literally by the hub.
type optString struct {
	value string
	set   bool
}

func (o optString) get() (string, bool) { return o.value, o.set }

func (o optString) param() xmlrpc.Value {
	if !o.set {
		return xmlrpc.Nil()
	}
	return xmlrpc.String(o.value)
}

// BuildQueryParams filters listTagged. Construct it with NewBuildQuery.
type BuildQueryParams struct {
	tag    optString
	pkg    optString
	owner  optString
	typ    optString
	latest bool
}

func (p BuildQueryParams) Tag() (string, bool)         { return p.tag.get() }
func (p BuildQueryParams) PackageName() (string, bool) { return p.pkg.get() }
func (p BuildQueryParams) Owner() (string, bool)       { return p.owner.get() }
func (p BuildQueryParams) Type() (string, bool)        { return p.typ.get() }
func (p BuildQueryParams) Latest() bool                { return p.latest }

// BuildQueryBuilder collects optional query fields. Every field starts
// unset and latest starts false.
type BuildQueryBuilder struct {
	params BuildQueryParams
}

func NewBuildQuery() *BuildQueryBuilder {
	return &BuildQueryBuilder{}
}

func (b *BuildQueryBuilder) Tag(tag string) *BuildQueryBuilder {
	b.params.tag = optString{value: tag, set: true}
	return b
}

func (b *BuildQueryBuilder) Package(name string) *BuildQueryBuilder {
	b.params.pkg = optString{value: name, set: true}
	return b
}

func (b *BuildQueryBuilder) Owner(owner string) *BuildQueryBuilder {
	b.params.owner = optString{value: owner, set: true}
	return b
}

// Type restricts results to a build type such as "rpm", "maven" or "image".
func (b *BuildQueryBuilder) Type(typ string) *BuildQueryBuilder {
	b.params.typ = optString{value: typ, set: true}
	return b
}

func (b *BuildQueryBuilder) Latest(latest bool) *BuildQueryBuilder {
	b.params.latest = latest
	return b
}

// Build returns the params. The builder may be reused; later changes do
// not affect params already built.
func (b *BuildQueryBuilder) Build() BuildQueryParams {
	return b.params
}
