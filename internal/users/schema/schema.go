// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema declares the shape of an identity record and validates input against it.

A [Schema] is plain data: a map of field name to [Field] descriptor. Validation is a
pure function that stops at the first violation.

Check order:

 1. Every input key must be declared (extra field).
 2. Required fields without a default must be present (missing field).
 3. Present values must match the declared kind (wrong type).
 4. Strings and arrays must respect minLength/maxLength (length bound).
*/
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"
)

// # Field Descriptors

// Kind is the primitive or structural type of a field.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindAny     Kind = "any"
)

// Field describes one declared field.
type Field struct {
	Kind      Kind   `json:"type"`
	Required  bool   `json:"required,omitempty"`
	Default   any    `json:"default,omitempty"`
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Unique    bool   `json:"unique,omitempty"`
	Items     *Field `json:"items,omitempty"`
	Fields    Schema `json:"fields,omitempty"`
}

// Schema maps field names to their descriptors.
type Schema map[string]Field

// Names returns the declared field names in a stable order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is a declared field.
func (s Schema) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Merge returns a copy of s with the fields of other added or replaced.
func (s Schema) Merge(other Schema) Schema {
	merged := make(Schema, len(s)+len(other))
	for name, field := range s {
		merged[name] = field
	}
	for name, field := range other {
		merged[name] = field
	}
	return merged
}

// # Violations

// Reason classifies a validation failure.
type Reason string

const (
	ReasonExtraField   Reason = "extra_field"
	ReasonMissingField Reason = "missing_field"
	ReasonWrongType    Reason = "wrong_type"
	ReasonLength       Reason = "length_bound"
)

// Violation is the first rule an input broke.
type Violation struct {
	Reason  Reason
	Field   string
	Message string
}

// Error implements the error interface.
func (v *Violation) Error() string { return v.Message }

// # Validation

// Validate checks input against s and returns the first [*Violation], or nil.
func Validate(s Schema, input map[string]any) *Violation {
	return validateObject(s, input, "")
}

func validateObject(s Schema, input map[string]any, prefix string) *Violation {

	// Extra keys are checked in sorted order so the reported field is deterministic.
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !s.Has(key) {
			return &Violation{
				Reason:  ReasonExtraField,
				Field:   prefix + key,
				Message: "Extra field present: " + prefix + key,
			}
		}
	}

	for _, name := range s.Names() {
		field := s[name]
		path := prefix + name
		value, present := input[name]

		if !present || value == nil {
			if field.Required && field.Default == nil {
				return &Violation{
					Reason:  ReasonMissingField,
					Field:   path,
					Message: "Field missing: " + path,
				}
			}
			continue
		}

		if violation := validateValue(field, value, path); violation != nil {
			return violation
		}
	}

	return nil
}

func validateValue(field Field, value any, path string) *Violation {
	if !matchesKind(field.Kind, value) {
		return &Violation{
			Reason:  ReasonWrongType,
			Field:   path,
			Message: fmt.Sprintf("%s must be a valid %s", path, field.Kind),
		}
	}

	if length, ok := lengthOf(value); ok {
		if field.MinLength != nil && length < *field.MinLength {
			return &Violation{
				Reason:  ReasonLength,
				Field:   path,
				Message: fmt.Sprintf("%s must be at least %d characters long", path, *field.MinLength),
			}
		}
		if field.MaxLength != nil && length > *field.MaxLength {
			return &Violation{
				Reason:  ReasonLength,
				Field:   path,
				Message: fmt.Sprintf("%s must be under %d characters long", path, *field.MaxLength+1),
			}
		}
	}

	switch field.Kind {
	case KindArray:
		if field.Items == nil {
			return nil
		}
		for i, item := range value.([]any) {
			if violation := validateValue(*field.Items, item, fmt.Sprintf("%s[%d]", path, i)); violation != nil {
				return violation
			}
		}
	case KindObject:
		if field.Fields == nil {
			return nil
		}
		return validateObject(field.Fields, value.(map[string]any), path+".")
	}

	return nil
}

// matchesKind compares a decoded JSON value against a declared kind.
func matchesKind(kind Kind, value any) bool {
	switch kind {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64, json.Number:
			return true
		}
		return false
	case KindBoolean:
		_, ok := value.(bool)
		return ok
	case KindArray:
		_, ok := value.([]any)
		return ok
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	case KindAny, "":
		return true
	default:
		return false
	}
}

// lengthOf returns the rune count of strings and the element count of arrays.
func lengthOf(value any) (int, bool) {
	switch typed := value.(type) {
	case string:
		return utf8.RuneCountInString(typed), true
	case []any:
		return len(typed), true
	default:
		return 0, false
	}
}

// # Defaults

// ApplyDefaults returns a shallow copy of input with declared defaults filled in
// for absent top-level fields.
func ApplyDefaults(s Schema, input map[string]any) map[string]any {
	record := make(map[string]any, len(input)+len(s))
	for key, value := range input {
		record[key] = value
	}
	for name, field := range s {
		if _, present := record[name]; !present && field.Default != nil {
			record[name] = field.Default
		}
	}
	return record
}
