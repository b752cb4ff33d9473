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
	"slices"
	"strconv"
	"strings"
)

// Change is a managed property whose current value differs from the desired one.
type Change struct {
	Property string
	Current  string
	Desired  string
}

// Changes compares the order against the current state of the same constraint.
// A nil current means the constraint does not exist.
// Resources are compared in their sorted form, so input order never causes a change.
func (o *Order) Changes(current *Order) []Change {
	if current == nil {
		if o.Ensure == Absent {
			return []Change{}
		}
		return []Change{{
			Property: AttributeEnsure,
			Current:  string(Absent),
			Desired:  string(o.Ensure),
		}}
	}
	if o.Ensure != current.Ensure {
		return []Change{{
			Property: AttributeEnsure,
			Current:  string(current.Ensure),
			Desired:  string(o.Ensure),
		}}
	}
	changes := make([]Change, 0)
	if o.Ensure == Absent {
		return changes
	}
	if !slices.Equal(o.Resources, current.Resources) {
		changes = append(changes, Change{
			Property: AttributeResources,
			Current:  formatList(current.Resources),
			Desired:  formatList(o.Resources),
		})
	}
	if o.Score != current.Score {
		changes = append(changes, Change{
			Property: AttributeScore,
			Current:  current.Score,
			Desired:  o.Score,
		})
	}
	if o.Symmetrical != current.Symmetrical {
		changes = append(changes, Change{
			Property: AttributeSymmetrical,
			Current:  strconv.FormatBool(current.Symmetrical),
			Desired:  strconv.FormatBool(o.Symmetrical),
		})
	}
	return changes
}

// InSync reports whether current already matches every managed property of the order.
func (o *Order) InSync(current *Order) bool {
	return len(o.Changes(current)) == 0
}

func formatList(values []string) string {
	return "[" + strings.Join(values, " ") + "]"
}
