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

package catalog

import (
	"github.com/kharf/declcs/pkg/constraint"
)

const (
	// FileName marks a directory as a catalog package.
	FileName = "catalog.cue"
)

// Resource is a single declaration in a catalog.
// It knows its own reference and the references it has to be applied after.
type Resource interface {
	GetRef() constraint.Reference
	// GetRequires returns explicitly declared dependencies.
	// Every one of them has to exist in the catalog.
	GetRequires() []constraint.Reference
	// Autorequire returns implicit dependencies.
	// The ones that do not exist in the catalog are ignored.
	Autorequire(membershipService string) []constraint.Reference
}

// OrderResource is a validated cs_order declaration.
type OrderResource struct {
	Order    *constraint.Order
	Requires []constraint.Reference
}

var _ Resource = (*OrderResource)(nil)

func (or *OrderResource) GetRef() constraint.Reference {
	return or.Order.Ref()
}

func (or *OrderResource) GetRequires() []constraint.Reference {
	return or.Requires
}

func (or *OrderResource) Autorequire(membershipService string) []constraint.Reference {
	return or.Order.Autorequire(membershipService)
}

// Declaration is a resource of a kind whose attributes are not interpreted,
// like primitives, groups, shadow CIBs or services.
// It only takes part in dependency resolution.
type Declaration struct {
	Ref        constraint.Reference
	Requires   []constraint.Reference
	Attributes map[string]any
}

var _ Resource = (*Declaration)(nil)

func (d *Declaration) GetRef() constraint.Reference {
	return d.Ref
}

func (d *Declaration) GetRequires() []constraint.Reference {
	return d.Requires
}

func (d *Declaration) Autorequire(string) []constraint.Reference {
	return nil
}
