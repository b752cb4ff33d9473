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

package txtar

import (
	"io"
	"os"
	"path/filepath"

	"golang.org/x/tools/txtar"
)

// Create extracts the txtar archive read from r into dir.
// Missing parent directories are created.
func Create(dir string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	archive := txtar.Parse(data)
	for _, file := range archive.Files {
		path := filepath.Join(dir, file.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, file.Data, 0644); err != nil {
			return err
		}
	}
	return nil
}
