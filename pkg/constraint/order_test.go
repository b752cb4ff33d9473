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

package constraint_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kharf/declcs/pkg/constraint"
	"gotest.tools/v3/assert"
)

func TestValidateResources(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		expected []string
		err      error
	}{
		{
			name:     "Sorted",
			value:    []string{"nodeB", "nodeA"},
			expected: []string{"nodeA", "nodeB"},
		},
		{
			name:     "AnySlice",
			value:    []any{"res2", "ms_res1:0", "res0"},
			expected: []string{"ms_res1:0", "res0", "res2"},
		},
		{
			name:     "Duplicates",
			value:    []string{"b", "a", "b"},
			expected: []string{"a", "b", "b"},
		},
		{
			name:  "Single",
			value: []string{"nodeA"},
			err:   constraint.ErrInvalidValue,
		},
		{
			name:  "Empty",
			value: []any{},
			err:   constraint.ErrInvalidValue,
		},
		{
			name:  "Scalar",
			value: "nodeA",
			err:   constraint.ErrWrongType,
		},
		{
			name:  "Nil",
			value: nil,
			err:   constraint.ErrWrongType,
		},
		{
			name:  "NonStringElement",
			value: []any{"nodeA", 1},
			err:   constraint.ErrWrongType,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resources, err := constraint.ValidateResources(tc.value)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.NilError(t, err)
			assert.DeepEqual(t, resources, tc.expected)
		})
	}
}

func TestValidateResources_DoesNotMutateInput(t *testing.T) {
	input := []string{"nodeB", "nodeA"}
	_, err := constraint.ValidateResources(input)
	assert.NilError(t, err)
	assert.DeepEqual(t, input, []string{"nodeB", "nodeA"})
}

func TestOrder_SetResources_Idempotent(t *testing.T) {
	order, err := constraint.NewOrder("o")
	assert.NilError(t, err)
	input := []string{"c", "a", "b"}
	assert.NilError(t, order.SetResources(input))
	first := order.Resources
	assert.NilError(t, order.SetResources(input))
	assert.DeepEqual(t, order.Resources, first)
	assert.DeepEqual(t, order.Resources, []string{"a", "b", "c"})
}

func TestOrder_SetResources_AttributeError(t *testing.T) {
	order, err := constraint.NewOrder("o")
	assert.NilError(t, err)
	err = order.SetResources("single")
	var attrErr *constraint.AttributeError
	assert.Assert(t, errors.As(err, &attrErr))
	assert.Equal(t, attrErr.Attribute, constraint.AttributeResources)
	assert.ErrorIs(t, err, constraint.ErrWrongType)
	assert.Assert(t, order.Resources == nil)
}

func TestParseResourceKind(t *testing.T) {
	testCases := []struct {
		value    string
		expected constraint.ResourceKind
		err      error
	}{
		{value: "primitive", expected: constraint.Primitive},
		{value: "group", expected: constraint.Group},
		{value: "bogus", err: constraint.ErrInvalidValue},
		{value: "Primitive", err: constraint.ErrInvalidValue},
		{value: "cs_primitive", err: constraint.ErrInvalidValue},
		{value: "", err: constraint.ErrInvalidValue},
	}
	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			kind, err := constraint.ParseResourceKind(tc.value)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.ErrorContains(t, err, "primitive, group")
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, kind, tc.expected)
		})
	}
}

func TestNewOrder_Defaults(t *testing.T) {
	order, err := constraint.NewOrder("web_after_db")
	assert.NilError(t, err)
	assert.Equal(t, order.Ensure, constraint.Present)
	assert.Equal(t, order.ResourcesType, constraint.Primitive)
	assert.Equal(t, order.Score, constraint.ScoreInfinity)
	assert.Equal(t, order.Symmetrical, true)
	assert.Equal(t, order.CIB, "")

	_, err = constraint.NewOrder("")
	assert.ErrorIs(t, err, constraint.ErrInvalidValue)
}

func TestOrder_Setters(t *testing.T) {
	testCases := []struct {
		name  string
		set   func(*constraint.Order) error
		check func(*testing.T, *constraint.Order)
		err   error
	}{
		{
			name: "ScoreString",
			set:  func(o *constraint.Order) error { return o.SetScore("-100") },
			check: func(t *testing.T, o *constraint.Order) {
				assert.Equal(t, o.Score, "-100")
			},
		},
		{
			name: "ScoreInt",
			set:  func(o *constraint.Order) error { return o.SetScore(500) },
			check: func(t *testing.T, o *constraint.Order) {
				assert.Equal(t, o.Score, "500")
			},
		},
		{
			name: "ScoreFloat",
			set:  func(o *constraint.Order) error { return o.SetScore(1.5) },
			err:  constraint.ErrWrongType,
		},
		{
			name: "SymmetricalBool",
			set:  func(o *constraint.Order) error { return o.SetSymmetrical(false) },
			check: func(t *testing.T, o *constraint.Order) {
				assert.Equal(t, o.Symmetrical, false)
			},
		},
		{
			name: "SymmetricalString",
			set:  func(o *constraint.Order) error { return o.SetSymmetrical("false") },
			check: func(t *testing.T, o *constraint.Order) {
				assert.Equal(t, o.Symmetrical, false)
			},
		},
		{
			name: "SymmetricalGarbage",
			set:  func(o *constraint.Order) error { return o.SetSymmetrical("maybe") },
			err:  constraint.ErrInvalidValue,
		},
		{
			name: "CIB",
			set:  func(o *constraint.Order) error { return o.SetCIB("shadow1") },
			check: func(t *testing.T, o *constraint.Order) {
				assert.Equal(t, o.CIB, "shadow1")
			},
		},
		{
			name: "EmptyCIB",
			set:  func(o *constraint.Order) error { return o.SetCIB("") },
			err:  constraint.ErrInvalidValue,
		},
		{
			name: "EnsureAbsent",
			set:  func(o *constraint.Order) error { return o.SetEnsure("absent") },
			check: func(t *testing.T, o *constraint.Order) {
				assert.Equal(t, o.Ensure, constraint.Absent)
			},
		},
		{
			name: "EnsureBogus",
			set:  func(o *constraint.Order) error { return o.SetEnsure("running") },
			err:  constraint.ErrInvalidValue,
		},
		{
			name: "ResourcesTypeGroup",
			set:  func(o *constraint.Order) error { return o.SetResourcesType("group") },
			check: func(t *testing.T, o *constraint.Order) {
				assert.Equal(t, o.ResourcesType, constraint.Group)
			},
		},
		{
			name: "ResourcesTypeNotString",
			set:  func(o *constraint.Order) error { return o.SetResourcesType(true) },
			err:  constraint.ErrWrongType,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := constraint.NewOrder("o")
			assert.NilError(t, err)
			err = tc.set(order)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.NilError(t, err)
			tc.check(t, order)
		})
	}
}

func TestFromAttributes(t *testing.T) {
	testCases := []struct {
		name     string
		attrs    map[string]any
		expected *constraint.Order
		err      error
	}{
		{
			name: "Defaults",
			attrs: map[string]any{
				"resources": []any{"nodeB", "nodeA"},
			},
			expected: &constraint.Order{
				Name:          "o",
				Ensure:        constraint.Present,
				Resources:     []string{"nodeA", "nodeB"},
				ResourcesType: constraint.Primitive,
				Score:         "INFINITY",
				Symmetrical:   true,
			},
		},
		{
			name: "Full",
			attrs: map[string]any{
				"ensure":         "present",
				"resources":      []any{"grp2", "grp1"},
				"resources_type": "group",
				"cib":            "staging",
				"score":          100,
				"symmetrical":    false,
			},
			expected: &constraint.Order{
				Name:          "o",
				Ensure:        constraint.Present,
				Resources:     []string{"grp1", "grp2"},
				ResourcesType: constraint.Group,
				CIB:           "staging",
				Score:         "100",
				Symmetrical:   false,
			},
		},
		{
			name: "MissingResources",
			attrs: map[string]any{
				"score": "INFINITY",
			},
			err: constraint.ErrMissingAttribute,
		},
		{
			name: "UnknownAttribute",
			attrs: map[string]any{
				"resources": []any{"a", "b"},
				"first":     "a",
			},
			err: constraint.ErrUnknownAttribute,
		},
		{
			name: "ResourcesNotArray",
			attrs: map[string]any{
				"resources": "a b",
			},
			err: constraint.ErrWrongType,
		},
		{
			name: "BogusResourcesType",
			attrs: map[string]any{
				"resources":      []any{"a", "b"},
				"resources_type": "bogus",
			},
			err: constraint.ErrInvalidValue,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := constraint.FromAttributes("o", tc.attrs)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Assert(t, order == nil)
				return
			}
			assert.NilError(t, err)
			assert.DeepEqual(t, order, tc.expected)
		})
	}
}

func TestOrder_Attributes(t *testing.T) {
	order, err := constraint.FromAttributes("o", map[string]any{
		"resources": []string{"b", "a"},
		"cib":       "shadow1",
	})
	assert.NilError(t, err)
	expected := map[string]any{
		"name":           "o",
		"ensure":         "present",
		"resources":      []string{"a", "b"},
		"resources_type": "primitive",
		"cib":            "shadow1",
		"score":          "INFINITY",
		"symmetrical":    true,
	}
	assert.Assert(t, cmp.Equal(order.Attributes(), expected), cmp.Diff(order.Attributes(), expected))
}
