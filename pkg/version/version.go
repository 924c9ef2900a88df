/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package version parses and compares dotted version strings the way
// assertion expressions need: comparison respects the precision the
// constraint was written with, so "1.2" matches any "1.2.x".
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmpty is returned when parsing an empty version string.
	ErrEmpty = errors.New("empty version string")

	// ErrTooManyComponents is returned for more than three dotted parts.
	ErrTooManyComponents = errors.New("too many version components")

	// ErrNonNumeric is returned when a component is not a number.
	ErrNonNumeric = errors.New("non-numeric version component")
)

// Version is a parsed dotted version. Precision records how many
// components were written (1 to 3); suffix metadata after "-" or "+" is
// kept but never compared.
type Version struct {
	Major     int    `json:"major" yaml:"major"`
	Minor     int    `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch     int    `json:"patch,omitempty" yaml:"patch,omitempty"`
	Precision int    `json:"precision,omitempty" yaml:"precision,omitempty"`
	Suffix    string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// Parse parses strings like "1", "1.2", "v1.2.3", or "1.2.3-11-generic".
// A leading "v" is stripped; anything after the first "-" or "+" following
// a digit lands in Suffix.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmpty
	}
	s = strings.TrimPrefix(s, "v")

	var v Version
	main := s
	for i := 1; i < len(s); i++ {
		if (s[i] == '-' || s[i] == '+') && s[i-1] >= '0' && s[i-1] <= '9' {
			main = s[:i]
			v.Suffix = s[i:]
			break
		}
	}

	parts := strings.Split(main, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		switch i {
		case 0:
			v.Major = n
		case 1:
			v.Minor = n
		case 2:
			v.Patch = n
		}
	}
	v.Precision = len(parts)
	return v, nil
}

// MustParse parses a version string and panics on failure. For hardcoded
// strings and tests only.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("version.MustParse: %v", err))
	}
	return v
}

// String renders the version at its own precision, without the suffix.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// Compare orders v against other up to the lower of the two precisions.
// It returns -1, 0, or 1. "1.2" therefore compares equal to "1.2.9".
func (v Version) Compare(other Version) int {
	precision := v.Precision
	if other.Precision < precision {
		precision = other.Precision
	}
	if precision < 1 {
		precision = 3
	}

	pairs := [3][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for i := 0; i < precision; i++ {
		if pairs[i][0] < pairs[i][1] {
			return -1
		}
		if pairs[i][0] > pairs[i][1] {
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is equal to or newer than other.
func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

// Newer reports whether v is strictly newer than other.
func (v Version) Newer(other Version) bool {
	return v.Compare(other) > 0
}

// Equals reports whether v and other compare equal at their shared
// precision.
func (v Version) Equals(other Version) bool {
	return v.Compare(other) == 0
}
