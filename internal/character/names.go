// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Character name limits.
const (
	MinNameLength = 2
	MaxNameLength = 12
)

// NameCheck is the outcome of validating a character name.
type NameCheck uint8

// Name outcomes.
const (
	NameOK NameCheck = iota
	NameTooShort
	NameTooLong
	NameInvalidCharacters
	NameReserved
)

// String returns the outcome name.
func (c NameCheck) String() string {
	switch c {
	case NameOK:
		return "ok"
	case NameTooShort:
		return "too_short"
	case NameTooLong:
		return "too_long"
	case NameInvalidCharacters:
		return "invalid_characters"
	case NameReserved:
		return "reserved"
	}
	return "unknown"
}

// NameFilter validates character names against the length and alphabet
// rules and a list of reserved patterns such as "gm*" or "*admin*".
// Matching is case-insensitive.
type NameFilter struct {
	reserved []glob.Glob
	patterns []string
}

// NewNameFilter compiles the reserved patterns.
func NewNameFilter(patterns []string) (*NameFilter, error) {
	f := &NameFilter{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, oops.Code("NAME_PATTERN_INVALID").With("pattern", p).Wrap(err)
		}
		f.reserved = append(f.reserved, g)
		f.patterns = append(f.patterns, p)
	}
	return f, nil
}

// Patterns returns the compiled patterns in lower case.
func (f *NameFilter) Patterns() []string { return f.patterns }

// Validate checks name.
func (f *NameFilter) Validate(name string) NameCheck {
	n := utf8.RuneCountInString(name)
	switch {
	case n < MinNameLength:
		return NameTooShort
	case n > MaxNameLength:
		return NameTooLong
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return NameInvalidCharacters
		}
	}
	lower := strings.ToLower(name)
	for _, g := range f.reserved {
		if g.Match(lower) {
			return NameReserved
		}
	}
	return NameOK
}
