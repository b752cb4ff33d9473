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

package cue

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/load"
)

var (
	ErrTooManyInstances = errors.New("Too many cue instances found")
)

// BuildPackage loads the cue package at packagePath, relative to projectRoot,
// unifies it with schema and validates the result.
// An empty schema skips unification.
func BuildPackage(
	ctx *cue.Context,
	packagePath string,
	projectRoot string,
	schema string,
) (*cue.Value, error) {
	harmonizedPackagePath := packagePath
	currentDirectoryPrefix := "./"
	if !strings.HasPrefix(packagePath, currentDirectoryPrefix) {
		harmonizedPackagePath = currentDirectoryPrefix + packagePath
	}
	packageName := filepath.Base(harmonizedPackagePath)
	// the project root has no directory name to derive the package from
	if packageName == "." {
		packageName = ""
	}

	cfg := &load.Config{
		Package:    packageName,
		ModuleRoot: projectRoot,
		Dir:        projectRoot,
	}

	instances := load.Instances([]string{harmonizedPackagePath}, cfg)
	if len(instances) > 1 {
		return nil, fmt.Errorf(
			"%w: make sure to only use a single cue package inside %s",
			ErrTooManyInstances,
			packagePath,
		)
	}

	instance := instances[0]
	if instance.Err != nil {
		return nil, instance.Err
	}

	value := ctx.BuildInstance(instance)
	if value.Err() != nil {
		return nil, value.Err()
	}

	if schema != "" {
		schemaValue := ctx.CompileString(schema)
		if schemaValue.Err() != nil {
			return nil, schemaValue.Err()
		}
		value = schemaValue.Unify(value)
		if value.Err() != nil {
			return nil, value.Err()
		}
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}
	return &value, nil
}
