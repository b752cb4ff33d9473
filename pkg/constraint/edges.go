// Copyright 2024 kharf
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package constraint

import (
	"fmt"
	"strings"
)

// MembershipService is the name of the cluster membership service every order requires.
const MembershipService = "corosync"

// Kind is the type of a resource that can be referenced in a catalog.
type Kind string

const (
	KindOrder     Kind = "cs_order"
	KindPrimitive Kind = "cs_primitive"
	KindGroup     Kind = "cs_group"
	KindShadow    Kind = "cs_shadow"
	KindService   Kind = "service"
)

var kinds = []Kind{KindOrder, KindPrimitive, KindGroup, KindShadow, KindService}

// Kind returns the catalog type the resource list of an order refers to.
func (k ResourceKind) Kind() Kind {
	switch k {
	case Primitive:
		return KindPrimitive
	case Group:
		return KindGroup
	}
	return ""
}

// Reference identifies a resource in a catalog by type and name.
type Reference struct {
	Kind Kind
	Name string
}

func (ref Reference) String() string {
	return fmt.Sprintf("%s[%s]", ref.Kind, ref.Name)
}

// ParseReference parses the "kind[name]" form produced by [Reference.String].
func ParseReference(str string) (Reference, error) {
	kind, rest, found := strings.Cut(str, "[")
	if !found || !strings.HasSuffix(rest, "]") {
		return Reference{}, fmt.Errorf("%w: %q is not of the form kind[name]", ErrMalformedReference, str)
	}
	name := strings.TrimSuffix(rest, "]")
	if kind == "" || name == "" {
		return Reference{}, fmt.Errorf("%w: %q has an empty kind or name", ErrMalformedReference, str)
	}
	for _, k := range kinds {
		if string(k) == kind {
			return Reference{Kind: k, Name: name}, nil
		}
	}
	return Reference{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedReference, kind)
}

// Ref is the reference under which the order itself appears in a catalog.
func (o *Order) Ref() Reference {
	return Reference{Kind: KindOrder, Name: o.Name}
}

// ContextEdges references the shadow CIB the order is created in, if any.
func (o *Order) ContextEdges() []Reference {
	if o.CIB == "" {
		return []Reference{}
	}
	return []Reference{{Kind: KindShadow, Name: o.CIB}}
}

// MembershipEdges references the cluster membership service.
func (o *Order) MembershipEdges(service string) []Reference {
	return []Reference{{Kind: KindService, Name: service}}
}

// ResourceEdges references every ordered resource under its canonical name,
// typed by the order's resources type.
func (o *Order) ResourceEdges() []Reference {
	switch o.ResourcesType {
	case Primitive, Group:
		return o.ResourceEdgesFor(o.ResourcesType)
	}
	return []Reference{}
}

// ResourceEdgesFor returns the resource edges of kind.
// It is empty unless kind is the order's resources type.
func (o *Order) ResourceEdgesFor(kind ResourceKind) []Reference {
	if kind != o.ResourcesType {
		return []Reference{}
	}
	refs := make([]Reference, 0, len(o.Resources))
	for _, resource := range o.Resources {
		refs = append(refs, Reference{
			Kind: kind.Kind(),
			Name: CanonicalName(resource),
		})
	}
	return refs
}

// Autorequire returns every resource the order has to be applied after.
// Whether the referenced resources exist is up to the consumer of the edges.
func (o *Order) Autorequire(service string) []Reference {
	refs := o.ContextEdges()
	refs = append(refs, o.MembershipEdges(service)...)
	return append(refs, o.ResourceEdges()...)
}
