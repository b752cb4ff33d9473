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
	"slices"

	"github.com/go-logr/logr"
	"github.com/kharf/declcs/pkg/constraint"
)

var (
	ErrCyclicDependency  = errors.New("Cyclic dependency detected")
	ErrDuplicateResource = errors.New("Duplicate resource")
	ErrUnknownResource   = errors.New("Unknown resource")
)

// DependencyGraph is an adjacency list which represents the directed acyclic graph of resource dependencies.
// Edges are not stored; they are derived from the resources whenever the graph is traversed.
type DependencyGraph struct {
	set map[string]Resource
	log logr.Logger
}

func NewDependencyGraph(log logr.Logger) DependencyGraph {
	return DependencyGraph{
		set: make(map[string]Resource),
		log: log,
	}
}

func (graph DependencyGraph) Insert(resources ...Resource) error {
	for _, resource := range resources {
		id := resource.GetRef().String()
		if _, found := graph.set[id]; found {
			return fmt.Errorf("%w: %s already exists in catalog", ErrDuplicateResource, id)
		}
		graph.set[id] = resource
	}
	return nil
}

func (graph DependencyGraph) Delete(ref constraint.Reference) {
	delete(graph.set, ref.String())
}

func (graph DependencyGraph) Get(ref constraint.Reference) Resource {
	resource, found := graph.set[ref.String()]
	if !found {
		return nil
	}
	return resource
}

func (graph DependencyGraph) Len() int {
	return len(graph.set)
}

// Resources returns every resource sorted by reference.
func (graph DependencyGraph) Resources() []Resource {
	ids := graph.sortedIDs()
	resources := make([]Resource, 0, len(ids))
	for _, id := range ids {
		resources = append(resources, graph.set[id])
	}
	return resources
}

// Dependencies resolves the edges of resource against the graph.
// Implicit edges to resources missing from the graph are dropped,
// explicit ones fail with ErrUnknownResource.
func (graph DependencyGraph) Dependencies(
	resource Resource,
	membershipService string,
) ([]constraint.Reference, error) {
	seen := make(map[string]struct{})
	deps := make([]constraint.Reference, 0)
	for _, ref := range resource.GetRequires() {
		id := ref.String()
		if _, found := graph.set[id]; !found {
			return nil, fmt.Errorf("%w: %s requires %s", ErrUnknownResource, resource.GetRef(), id)
		}
		if _, found := seen[id]; !found {
			seen[id] = struct{}{}
			deps = append(deps, ref)
		}
	}
	for _, ref := range resource.Autorequire(membershipService) {
		id := ref.String()
		if _, found := graph.set[id]; !found {
			graph.log.V(1).Info(
				"Skipping autorequire of undeclared resource",
				"resource",
				resource.GetRef().String(),
				"target",
				id,
			)
			continue
		}
		if _, found := seen[id]; !found {
			seen[id] = struct{}{}
			deps = append(deps, ref)
		}
	}
	return deps, nil
}

// TopologicalSort performs a topological sort on the resource dependency graph and returns the sorted order.
// Dependencies come before their dependents. Resources are visited in reference order, so the result is stable.
// It returns an error if a cycle is detected.
func (graph DependencyGraph) TopologicalSort(membershipService string) ([]Resource, error) {
	inProcessing := make(map[string]struct{})
	visited := make(map[string]struct{}, len(graph.set))
	result := make([]Resource, 0, len(graph.set))
	var walk func(id string) error
	walk = func(id string) error {
		if _, found := inProcessing[id]; found {
			return fmt.Errorf("%w for %s", ErrCyclicDependency, id)
		}
		if _, found := visited[id]; found {
			return nil
		}
		inProcessing[id] = struct{}{}
		resource := graph.set[id]
		deps, err := graph.Dependencies(resource, membershipService)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if err := walk(dep.String()); err != nil {
				return err
			}
		}
		delete(inProcessing, id)
		visited[id] = struct{}{}
		result = append(result, resource)
		return nil
	}
	for _, id := range graph.sortedIDs() {
		if err := walk(id); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (graph DependencyGraph) sortedIDs() []string {
	ids := make([]string, 0, len(graph.set))
	for id := range graph.set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
