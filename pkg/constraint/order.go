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

// Package constraint implements the cs_order resource type: ordering constraints
// between Corosync/Pacemaker resources, their validation, and the dependency edges
// an order declares towards other resources of a catalog.
package constraint

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Attribute names recognised by the cs_order type.
const (
	AttributeName          = "name"
	AttributeEnsure        = "ensure"
	AttributeResources     = "resources"
	AttributeResourcesType = "resources_type"
	AttributeCIB           = "cib"
	AttributeScore         = "score"
	AttributeSymmetrical   = "symmetrical"
)

// ScoreInfinity is the Pacemaker token for a mandatory constraint.
const ScoreInfinity = "INFINITY"

// Ensure is the desired lifecycle state of a constraint.
type Ensure string

const (
	Present Ensure = "present"
	Absent  Ensure = "absent"
)

// ResourceKind declares which sibling type the names in an order's resource list refer to.
type ResourceKind string

const (
	Primitive ResourceKind = "primitive"
	Group     ResourceKind = "group"
)

// ValidResourceKinds lists every ResourceKind an order accepts.
var ValidResourceKinds = []ResourceKind{Primitive, Group}

// ParseResourceKind accepts exactly one of ValidResourceKinds, case-sensitive.
func ParseResourceKind(value string) (ResourceKind, error) {
	kind := ResourceKind(value)
	if slices.Contains(ValidResourceKinds, kind) {
		return kind, nil
	}
	valid := make([]string, 0, len(ValidResourceKinds))
	for _, k := range ValidResourceKinds {
		valid = append(valid, string(k))
	}
	return "", fmt.Errorf(
		"%w: %q is not a valid resources type, valid types are %s",
		ErrInvalidValue,
		value,
		strings.Join(valid, ", "),
	)
}

// Order is a Corosync/Pacemaker ordering constraint.
// The Go equivalent of a cs_order declaration.
type Order struct {
	Name          string
	Ensure        Ensure
	Resources     []string
	ResourcesType ResourceKind
	CIB           string
	Score         string
	Symmetrical   bool
}

// NewOrder constructs an [Order] with every default applied.
// Resources are left empty and have to be set before the order is usable.
func NewOrder(name string) (*Order, error) {
	if name == "" {
		return nil, attributeError(AttributeName, fmt.Errorf("%w: name must not be empty", ErrInvalidValue))
	}
	return &Order{
		Name:          name,
		Ensure:        Present,
		ResourcesType: Primitive,
		Score:         ScoreInfinity,
		Symmetrical:   true,
	}, nil
}

// ValidateResources checks that value is a sequence of at least two resource names
// and returns a sorted copy of it.
func ValidateResources(value any) ([]string, error) {
	var resources []string
	switch v := value.(type) {
	case []string:
		resources = slices.Clone(v)
	case []any:
		resources = make([]string, 0, len(v))
		for _, elem := range v {
			name, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("%w: must be an array of strings, got element %v (%T)", ErrWrongType, elem, elem)
			}
			resources = append(resources, name)
		}
	default:
		return nil, fmt.Errorf("%w: must be an array, got %T", ErrWrongType, value)
	}
	if len(resources) < 2 {
		return nil, fmt.Errorf("%w: must supply at least two resources", ErrInvalidValue)
	}
	slices.Sort(resources)
	return resources, nil
}

func (o *Order) SetResources(value any) error {
	resources, err := ValidateResources(value)
	if err != nil {
		return attributeError(AttributeResources, err)
	}
	o.Resources = resources
	return nil
}

func (o *Order) SetResourcesType(value any) error {
	str, ok := value.(string)
	if !ok {
		return attributeError(AttributeResourcesType, fmt.Errorf("%w: must be a string, got %T", ErrWrongType, value))
	}
	kind, err := ParseResourceKind(str)
	if err != nil {
		return attributeError(AttributeResourcesType, err)
	}
	o.ResourcesType = kind
	return nil
}

// ValidateScore accepts strings verbatim and formats integers in base 10.
// Range checks are left to Pacemaker.
func ValidateScore(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	}
	return "", fmt.Errorf("%w: must be an integer or %s, got %T", ErrWrongType, ScoreInfinity, value)
}

func (o *Order) SetScore(value any) error {
	score, err := ValidateScore(value)
	if err != nil {
		return attributeError(AttributeScore, err)
	}
	o.Score = score
	return nil
}

func (o *Order) SetSymmetrical(value any) error {
	switch v := value.(type) {
	case bool:
		o.Symmetrical = v
		return nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return attributeError(AttributeSymmetrical, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v))
		}
		o.Symmetrical = b
		return nil
	}
	return attributeError(AttributeSymmetrical, fmt.Errorf("%w: must be a boolean, got %T", ErrWrongType, value))
}

func (o *Order) SetCIB(value any) error {
	cib, ok := value.(string)
	if !ok {
		return attributeError(AttributeCIB, fmt.Errorf("%w: must be a string, got %T", ErrWrongType, value))
	}
	if cib == "" {
		return attributeError(AttributeCIB, fmt.Errorf("%w: must not be empty", ErrInvalidValue))
	}
	o.CIB = cib
	return nil
}

func (o *Order) SetEnsure(value any) error {
	str, ok := value.(string)
	if !ok {
		return attributeError(AttributeEnsure, fmt.Errorf("%w: must be a string, got %T", ErrWrongType, value))
	}
	switch ensure := Ensure(str); ensure {
	case Present, Absent:
		o.Ensure = ensure
		return nil
	}
	return attributeError(AttributeEnsure, fmt.Errorf("%w: %q, valid values are %s, %s", ErrInvalidValue, str, Present, Absent))
}

// FromAttributes builds an [Order] from raw attribute values as they come out of a catalog.
// Attributes are applied in a fixed order, so the first reported error is deterministic.
func FromAttributes(name string, attrs map[string]any) (*Order, error) {
	order, err := NewOrder(name)
	if err != nil {
		return nil, err
	}
	unknown := make([]string, 0)
	for attr := range attrs {
		if _, found := setters[attr]; !found {
			unknown = append(unknown, attr)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, attributeError(unknown[0], ErrUnknownAttribute)
	}
	if _, found := attrs[AttributeResources]; !found {
		return nil, attributeError(AttributeResources, fmt.Errorf("%w: must supply at least two resources", ErrMissingAttribute))
	}
	for _, attr := range attributeOrder {
		value, found := attrs[attr]
		if !found {
			continue
		}
		if err := setters[attr](order, value); err != nil {
			return nil, err
		}
	}
	return order, nil
}

var attributeOrder = []string{
	AttributeEnsure,
	AttributeResources,
	AttributeResourcesType,
	AttributeCIB,
	AttributeScore,
	AttributeSymmetrical,
}

var setters = map[string]func(*Order, any) error{
	AttributeEnsure:        (*Order).SetEnsure,
	AttributeResources:     (*Order).SetResources,
	AttributeResourcesType: (*Order).SetResourcesType,
	AttributeCIB:           (*Order).SetCIB,
	AttributeScore:         (*Order).SetScore,
	AttributeSymmetrical:   (*Order).SetSymmetrical,
}

// Attributes returns the validated attribute set handed to a cluster resource manager adapter.
func (o *Order) Attributes() map[string]any {
	attrs := map[string]any{
		AttributeName:          o.Name,
		AttributeEnsure:        string(o.Ensure),
		AttributeResources:     slices.Clone(o.Resources),
		AttributeResourcesType: string(o.ResourcesType),
		AttributeScore:         o.Score,
		AttributeSymmetrical:   o.Symmetrical,
	}
	if o.CIB != "" {
		attrs[AttributeCIB] = o.CIB
	}
	return attrs
}
