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

package inventory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kharf/declcs/pkg/constraint"
	"sigs.k8s.io/yaml"
)

var (
	ErrWrongInventoryKey = errors.New("Inventory key is incorrect")
)

const fileExtension = ".yaml"

// OrderItem is the stored attribute set of an order constraint.
// It is the contract a cluster resource manager adapter materializes.
type OrderItem struct {
	Name          string   `json:"name"`
	Ensure        string   `json:"ensure"`
	Resources     []string `json:"resources"`
	ResourcesType string   `json:"resources_type"`
	CIB           string   `json:"cib,omitempty"`
	Score         string   `json:"score"`
	Symmetrical   bool     `json:"symmetrical"`
}

// NewOrderItem captures the validated attributes of order.
func NewOrderItem(order *constraint.Order) OrderItem {
	return OrderItem{
		Name:          order.Name,
		Ensure:        string(order.Ensure),
		Resources:     order.Resources,
		ResourcesType: string(order.ResourcesType),
		CIB:           order.CIB,
		Score:         order.Score,
		Symmetrical:   order.Symmetrical,
	}
}

// Order validates the stored attributes again and returns the order they describe.
func (item OrderItem) Order() (*constraint.Order, error) {
	resources := make([]any, 0, len(item.Resources))
	for _, resource := range item.Resources {
		resources = append(resources, resource)
	}
	attrs := map[string]any{
		constraint.AttributeEnsure:        item.Ensure,
		constraint.AttributeResources:     resources,
		constraint.AttributeResourcesType: item.ResourcesType,
		constraint.AttributeScore:         item.Score,
		constraint.AttributeSymmetrical:   item.Symmetrical,
	}
	if item.CIB != "" {
		attrs[constraint.AttributeCIB] = item.CIB
	}
	return constraint.FromAttributes(item.Name, attrs)
}

// Storage is a snapshot of every stored order, keyed by name.
type Storage struct {
	orders map[string]*constraint.Order
}

func NewStorage(orders map[string]*constraint.Order) Storage {
	return Storage{
		orders: orders,
	}
}

func (inv Storage) Orders() map[string]*constraint.Order {
	return inv.orders
}

// Get returns the stored order or nil.
func (inv Storage) Get(name string) *constraint.Order {
	return inv.orders[name]
}

func (inv Storage) HasOrder(name string) bool {
	_, exists := inv.orders[name]
	return exists
}

// Instance is a representation of an inventory on the local file system.
// It can store, delete and read order constraints.
type Instance struct {
	Path string
}

func (instance Instance) Load() (*Storage, error) {
	if err := os.MkdirAll(instance.Path, 0700); err != nil {
		return nil, err
	}
	orders := make(map[string]*constraint.Order)
	err := filepath.WalkDir(instance.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		key := d.Name()
		name, found := strings.CutSuffix(key, fileExtension)
		if !found || name == "" {
			return fmt.Errorf("%w: key '%s' is not a %s file", ErrWrongInventoryKey, key, fileExtension)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var item OrderItem
		if err := yaml.UnmarshalStrict(data, &item); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if item.Name != name {
			return fmt.Errorf("%w: key '%s' holds order '%s'", ErrWrongInventoryKey, key, item.Name)
		}
		order, err := item.Order()
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		orders[name] = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Storage{
		orders: orders,
	}, nil
}

func (instance Instance) Store(order *constraint.Order) error {
	if strings.ContainsRune(order.Name, filepath.Separator) {
		return fmt.Errorf("%w: order name '%s' contains a path separator", ErrWrongInventoryKey, order.Name)
	}
	if err := os.MkdirAll(instance.Path, 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(NewOrderItem(order))
	if err != nil {
		return err
	}
	return os.WriteFile(instance.key(order.Name), data, 0600)
}

// Delete removes a stored order. Deleting an order that is not stored is not an error.
func (instance Instance) Delete(name string) error {
	err := os.Remove(instance.key(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (instance Instance) key(name string) string {
	return filepath.Join(instance.Path, name+fileExtension)
}
