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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

var (
	ErrLoadProject = errors.New("Could not load project")
)

// Manager loads a project of catalog packages and resolves the resource dependency graph.
type Manager struct {
	builder        Builder
	log            logr.Logger
	workerPoolSize int
}

// NewManager constructs a [Manager]. A workerPoolSize below 1 is raised to 1.
func NewManager(builder Builder, log logr.Logger, workerPoolSize int) Manager {
	workerPoolSize = max(workerPoolSize, 1)
	return Manager{
		builder:        builder,
		log:            log,
		workerPoolSize: workerPoolSize,
	}
}

type resourceResult struct {
	packagePath string
	resources   []Resource
	err         error
}

// Load walks the project at projectPath, builds every directory containing a [FileName]
// and returns all resources as one dependency graph.
func (manager *Manager) Load(
	projectPath string,
) (*DependencyGraph, error) {
	projectPath = strings.TrimSuffix(projectPath, "/")
	if _, err := os.Stat(projectPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadProject, err)
	}
	resultChan := make(chan resourceResult)
	go func() {
		defer close(resultChan)
		eg := errgroup.Group{}
		eg.SetLimit(manager.workerPoolSize)
		err := filepath.WalkDir(
			projectPath,
			func(path string, dirEntry fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !dirEntry.IsDir() {
					return nil
				}
				catalogFilePath := filepath.Join(path, FileName)
				if _, err := os.Stat(catalogFilePath); errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				relativePath, err := filepath.Rel(projectPath, path)
				if err != nil {
					return err
				}
				eg.Go(func() error {
					resources, err := manager.builder.Build(
						WithProjectRoot(projectPath),
						WithPackagePath(relativePath),
					)
					if err != nil {
						return fmt.Errorf("%s: %w", relativePath, err)
					}
					resultChan <- resourceResult{
						packagePath: relativePath,
						resources:   resources,
					}
					return nil
				})
				return nil
			},
		)
		if err := eg.Wait(); err != nil {
			resultChan <- resourceResult{
				err: err,
			}
		}
		if err != nil {
			resultChan <- resourceResult{
				err: err,
			}
		}
	}()
	graph := NewDependencyGraph(manager.log)
	var loadErr error
	for result := range resultChan {
		// drain, the walker blocks on send otherwise
		if loadErr != nil {
			continue
		}
		if result.err != nil {
			loadErr = fmt.Errorf("%w: %w", ErrLoadProject, result.err)
			continue
		}
		manager.log.V(1).Info(
			"Loaded catalog package",
			"package",
			result.packagePath,
			"resources",
			len(result.resources),
		)
		if err := graph.Insert(result.resources...); err != nil {
			loadErr = fmt.Errorf("%w: %w", ErrLoadProject, err)
		}
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return &graph, nil
}
