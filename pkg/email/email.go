// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package email canonicalises email addresses before they are stored or looked up.
//
// # Usage
//
// Every identity store keys its uniqueness index on the normalised form, so
// "Tai@Example.com " and "tai@example.com" name the same identity.
package email

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize converts an address to its canonical form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFC so composed and decomposed accents compare equal.
// 3. Converts to lowercase.
func Normalize(address string) string {
	result := strings.TrimSpace(address)
	result = norm.NFC.String(result)
	return strings.ToLower(result)
}
