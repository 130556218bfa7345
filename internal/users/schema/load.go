// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// # Built-in Fields

// Names of the fields every identity schema carries.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Base returns the minimal identity schema: a unique required email and a
// required password hash.
func Base() Schema {
	return Schema{
		FieldEmail:    {Kind: KindString, Required: true, Unique: true},
		FieldPassword: {Kind: KindString, Required: true},
	}
}

// # Loading

// Parse decodes a JSON schema document and merges it over [Base]. Declared
// email/password entries may add constraints but must stay required strings.
//
// Example document:
//
//	{"name": {"type": "string", "required": true, "maxLength": 40},
//	 "tags": {"type": "array", "items": {"type": "string"}}}
func Parse(data []byte) (Schema, error) {
	var declared Schema
	if err := json.Unmarshal(data, &declared); err != nil {
		return nil, fmt.Errorf("schema: invalid document: %w", err)
	}

	if err := check(declared, ""); err != nil {
		return nil, err
	}

	merged := Base().Merge(declared)
	for _, name := range []string{FieldEmail, FieldPassword} {
		if field := merged[name]; field.Kind != KindString || !field.Required {
			return nil, fmt.Errorf("schema: field %q must stay a required string", name)
		}
	}

	return merged, nil
}

// LoadFile reads a JSON schema from disk. An empty path yields [Base].
func LoadFile(path string) (Schema, error) {
	if path == "" {
		return Base(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: failed to read %s: %w", path, err)
	}

	return Parse(data)
}

// check rejects descriptors that could never validate anything.
func check(s Schema, prefix string) error {
	for name, field := range s {
		path := prefix + name

		if !knownKind(field.Kind) {
			return fmt.Errorf("schema: field %q has unknown type %q", path, field.Kind)
		}
		if field.MinLength != nil && field.MaxLength != nil && *field.MinLength > *field.MaxLength {
			return fmt.Errorf("schema: field %q has minLength greater than maxLength", path)
		}
		if field.Default != nil && !matchesKind(field.Kind, field.Default) {
			return fmt.Errorf("schema: field %q default does not match type %q", path, field.Kind)
		}
		if field.Items != nil {
			if err := check(Schema{"[]": *field.Items}, path); err != nil {
				return err
			}
		}
		if field.Fields != nil {
			if err := check(field.Fields, path+"."); err != nil {
				return err
			}
		}
	}
	return nil
}

func knownKind(kind Kind) bool {
	switch kind {
	case KindString, KindNumber, KindBoolean, KindArray, KindObject, KindAny:
		return true
	}
	return false
}
