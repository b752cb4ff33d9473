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

	"cuelang.org/go/cue/cuecontext"
	internalCue "github.com/kharf/declcs/internal/cue"
	"github.com/kharf/declcs/pkg/constraint"
)

var (
	ErrBuildResource = errors.New("Could not build resource")
)

const (
	typeField    = "type"
	nameField    = "name"
	requireField = "require"
)

// Schema every catalog package is unified with.
// Each regular top-level field is a resource, its label is the resource title.
const Schema = `
#Resource: {
	type!:    "cs_order" | "cs_primitive" | "cs_group" | "cs_shadow" | "service"
	name?:    string & !=""
	require?: [...string]
	...
}

[string]: #Resource
`

// Builder compiles and decodes CUE catalog definitions to the corresponding Go resources.
type Builder struct {
}

// NewBuilder contructs a [Builder].
func NewBuilder() Builder {
	return Builder{}
}

// BuildOptions defining what catalog package is compiled and how it is done.
type BuildOptions struct {
	packagePath string
	projectRoot string
}

type buildOptions = func(opts *BuildOptions)

// WithPackagePath provides the path of the catalog package, relative to the project root.
func WithPackagePath(packagePath string) buildOptions {
	return func(opts *BuildOptions) {
		opts.packagePath = packagePath
	}
}

// WithProjectRoot provides the path to the project root.
func WithProjectRoot(projectRootPath string) buildOptions {
	return func(opts *BuildOptions) {
		opts.projectRoot = projectRootPath
	}
}

const (
	ProjectRootPath = "."
)

// Build accepts options defining which cue package to compile
// and compiles it to a slice of Resources.
// Every cs_order is validated while it is decoded.
func (b Builder) Build(opts ...buildOptions) ([]Resource, error) {
	options := &BuildOptions{
		packagePath: ".",
		projectRoot: ProjectRootPath,
	}
	for _, opt := range opts {
		opt(options)
	}
	value, err := internalCue.BuildPackage(
		cuecontext.New(),
		options.packagePath,
		options.projectRoot,
		Schema,
	)
	if err != nil {
		return nil, err
	}
	iter, err := value.Fields()
	if err != nil {
		return nil, err
	}
	resources := make([]Resource, 0)
	for iter.Next() {
		title := iter.Label()
		var attrs map[string]interface{}
		if err := iter.Value().Decode(&attrs); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBuildResource, title, err)
		}
		resource, err := decodeResource(title, attrs)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBuildResource, title, err)
		}
		resources = append(resources, resource)
	}
	return resources, nil
}

func decodeResource(title string, attrs map[string]interface{}) (Resource, error) {
	kind, _ := attrs[typeField].(string)
	delete(attrs, typeField)
	name := title
	if value, found := attrs[nameField].(string); found {
		name = value
	}
	delete(attrs, nameField)
	requires, err := decodeRequires(attrs[requireField])
	if err != nil {
		return nil, err
	}
	delete(attrs, requireField)

	switch constraint.Kind(kind) {
	case constraint.KindOrder:
		order, err := constraint.FromAttributes(name, attrs)
		if err != nil {
			return nil, err
		}
		return &OrderResource{
			Order:    order,
			Requires: requires,
		}, nil
	case constraint.KindPrimitive, constraint.KindGroup, constraint.KindShadow, constraint.KindService:
		return &Declaration{
			Ref: constraint.Reference{
				Kind: constraint.Kind(kind),
				Name: name,
			},
			Requires:   requires,
			Attributes: attrs,
		}, nil
	}
	return nil, fmt.Errorf("%w: unsupported resource type %q", constraint.ErrInvalidValue, kind)
}

func decodeRequires(value interface{}) ([]constraint.Reference, error) {
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: require must be a list, got %T", constraint.ErrWrongType, value)
	}
	refs := make([]constraint.Reference, 0, len(list))
	for _, elem := range list {
		str, ok := elem.(string)
		if !ok {
			return nil, fmt.Errorf("%w: require must only contain strings, got %T", constraint.ErrWrongType, elem)
		}
		ref, err := constraint.ParseReference(str)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
