// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package version parses and compares Helm chart versions.
//
// Helm requires chart versions to follow Semantic Versioning 2.0.0, so the
// parser here is strict: all three numeric components must be present, and
// optional prerelease and build metadata follow the SemVer grammar.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrWrongComponents   = errors.New("version must have exactly 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrLeadingZero       = errors.New("version component has a leading zero")
	ErrInvalidPrerelease = errors.New("invalid prerelease identifier")
	ErrInvalidBuild      = errors.New("invalid build metadata")
)

// Version is a parsed SemVer 2.0.0 chart version.
// Prerelease and Build hold the dot-separated identifiers after '-' and '+'
// without the leading separator, e.g. "rc.1" and "sha.5114f85".
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`

	Prerelease string `json:"prerelease,omitempty" yaml:"prerelease,omitempty"`
	Build      string `json:"build,omitempty" yaml:"build,omitempty"`
}

// NewVersion creates a Version from major, minor, and patch components
// with no prerelease or build metadata.
func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// String renders the version in canonical SemVer form,
// e.g. "1.2.3", "1.2.3-rc.1", or "1.2.3+sha.5114f85".
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		b.WriteByte('-')
		b.WriteString(v.Prerelease)
	}
	if v.Build != "" {
		b.WriteByte('+')
		b.WriteString(v.Build)
	}
	return b.String()
}

// ParseVersion parses a chart version string into a Version.
// A leading "v" is tolerated and stripped, since it is common in tags,
// but the remainder must be full SemVer: "MAJOR.MINOR.PATCH" with optional
// "-PRERELEASE" and "+BUILD" parts.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	var v Version

	// Build metadata comes last and may itself contain hyphens.
	if core, build, ok := strings.Cut(s, "+"); ok {
		if err := validIdentifiers(build, false); err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidBuild, build)
		}
		s, v.Build = core, build
	}

	if core, pre, ok := strings.Cut(s, "-"); ok {
		if err := validIdentifiers(pre, true); err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidPrerelease, pre)
		}
		s, v.Prerelease = core, pre
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: got %d", ErrWrongComponents, len(parts))
	}

	nums := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		n, err := parseNumeric(part)
		if err != nil {
			return Version{}, err
		}
		*nums[i] = n
	}

	return v, nil
}

// MustParseVersion parses a version string and panics on failure.
// Intended for static version literals in tests and defaults.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("version: parse %q: %v", s, err))
	}
	return v
}

// IsValid reports whether s parses as a chart version.
func IsValid(s string) bool {
	_, err := ParseVersion(s)
	return err == nil
}

// Compare returns -1, 0, or 1 when v is ordered before, equal to, or after
// other. Prerelease identifiers are compared per SemVer precedence rules:
// a prerelease version sorts before its release, numeric identifiers compare
// numerically, and build metadata never affects ordering.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	return comparePrerelease(v.Prerelease, other.Prerelease)
}

// Equals reports whether v and other have the same precedence.
// Build metadata is ignored, matching SemVer equality.
func (v Version) Equals(other Version) bool {
	return v.Compare(other) == 0
}

// IsNewer reports whether v has strictly higher precedence than other.
func (v Version) IsNewer(other Version) bool {
	return v.Compare(other) > 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func comparePrerelease(a, b string) int {
	if a == b {
		return 0
	}
	// A release outranks any of its prereleases.
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		switch {
		case aErr == nil && bErr == nil:
			if c := compareInt(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			// Numeric identifiers sort before alphanumeric ones.
			return -1
		case bErr == nil:
			return 1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return compareInt(len(as), len(bs))
}

func parseNumeric(part string) (int, error) {
	if part == "" {
		return 0, fmt.Errorf("%w: empty component", ErrNonNumeric)
	}
	if len(part) > 1 && part[0] == '0' {
		return 0, fmt.Errorf("%w: %q", ErrLeadingZero, part)
	}
	n, err := strconv.Atoi(part)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNonNumeric, part)
	}
	return n, nil
}

// validIdentifiers checks a dot-separated prerelease or build section.
// Prerelease numeric identifiers must not have leading zeros.
func validIdentifiers(s string, prerelease bool) error {
	if s == "" {
		return errors.New("empty section")
	}
	for _, id := range strings.Split(s, ".") {
		if id == "" {
			return errors.New("empty identifier")
		}
		numeric := true
		for _, ch := range id {
			switch {
			case ch >= '0' && ch <= '9':
			case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '-':
				numeric = false
			default:
				return fmt.Errorf("invalid character %q", ch)
			}
		}
		if prerelease && numeric && len(id) > 1 && id[0] == '0' {
			return fmt.Errorf("leading zero in %q", id)
		}
	}
	return nil
}
