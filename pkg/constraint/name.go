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

import "strings"

// masterSlavePrefix is the naming convention for master/slave wrappers around a primitive.
const masterSlavePrefix = "ms_"

// CanonicalName maps a resource reference such as "ms_db:0" to the name of the
// declared sibling resource, "db".
// The instance suffix after the first ':' is dropped, then a single "ms_" prefix.
func CanonicalName(raw string) string {
	name, _, _ := strings.Cut(raw, ":")
	return strings.TrimPrefix(name, masterSlavePrefix)
}
