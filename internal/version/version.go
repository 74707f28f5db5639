// Package version parses installer tags into structured versions and orders them.
//
// Two grammars are recognised, tried in a fixed order:
//   - date-tagged releases, MAJOR.MINOR.PATCH-YYYYMMDD
//   - general semantic versions, MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]
//
// Tag text coming from git (describe output, ls-remote refs, local tag
// listings) is passed through Normalize before parsing. The original tag is
// kept in Version.Raw so callers can hand it back to git unchanged.
package version

import (
	"errors"
	"fmt"
)

// ErrMalformedVersion is matched by every ParseError.
var ErrMalformedVersion = errors.New("invalid version format")

// Version represents a parsed installer version. The zero value is not a
// valid version; use Parse or ParseTag.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string
	// Raw is the exact text the version was parsed from. For ParseTag it is
	// the tag name before normalization.
	Raw string
}

// ParseError reports input that matches neither grammar.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version format: %s", e.Input)
}

// Unwrap lets errors.Is match ErrMalformedVersion.
func (e *ParseError) Unwrap() error {
	return ErrMalformedVersion
}

// IsRelease reports whether the version carries no prerelease suffix.
func (v Version) IsRelease() bool {
	return v.Prerelease == ""
}

// IsDateVersion reports whether the prerelease suffix is exactly eight ASCII
// digits, conventionally a YYYYMMDD build date.
func (v Version) IsDateVersion() bool {
	return isDateStamp(v.Prerelease)
}

// String returns the canonical form without a leading 'v'.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

func isDateStamp(s string) bool {
	if len(s) != dateStampLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
