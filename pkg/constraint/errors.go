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
	"errors"
	"fmt"
)

var (
	// ErrWrongType is returned when an attribute receives a value of the wrong shape.
	ErrWrongType = errors.New("Wrong attribute type")
	// ErrInvalidValue is returned when an attribute value violates a domain rule.
	ErrInvalidValue = errors.New("Invalid attribute value")

	ErrUnknownAttribute   = errors.New("Unknown attribute")
	ErrMissingAttribute   = errors.New("Missing attribute")
	ErrMalformedReference = errors.New("Malformed resource reference")
)

// AttributeError annotates a validation failure with the attribute it occurred on.
type AttributeError struct {
	Attribute string
	Err       error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("cs_order: %s: %s", e.Attribute, e.Err)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

func attributeError(attribute string, err error) error {
	return &AttributeError{
		Attribute: attribute,
		Err:       err,
	}
}
