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
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"cuelang.org/go/mod/modfile"
)

// LanguageVersion is the CUE language version new projects are pinned to.
const LanguageVersion = "v0.8.0"

const exampleCatalog = `package cluster

corosync: type: "service"

db: type: "cs_primitive"

web: type: "cs_primitive"

db_before_web: {
	type:      "cs_order"
	resources: ["db", "web"]
	score:     "INFINITY"
}
`

// Init creates a catalog project with the given cue module name in path.
// Existing files are left untouched.
func Init(module string, path string) error {
	moduleDir := filepath.Join(path, "cue.mod")
	if err := createIfMissing(filepath.Join(moduleDir, "module.cue"), func() ([]byte, error) {
		moduleFile := modfile.File{
			Module: module,
			Language: &modfile.Language{
				Version: LanguageVersion,
			},
		}
		return moduleFile.Format()
	}); err != nil {
		return err
	}
	return createIfMissing(filepath.Join(path, "cluster", FileName), func() ([]byte, error) {
		return []byte(exampleCatalog), nil
	})
}

func createIfMissing(file string, content func() ([]byte, error)) error {
	_, err := os.Stat(file)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	data, err := content()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}
	return os.WriteFile(file, data, 0666)
}
