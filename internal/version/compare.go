package version

import (
	"cmp"
	"slices"
	"strings"
)

// Compare compares two versions.
// Returns:
//
//	-1 if a < b
//	 0 if a == b
//	 1 if a > b
//
// A release orders above any prerelease of the same MAJOR.MINOR.PATCH. Two
// prereleases compare byte-wise, date stamps included. Build metadata is
// ignored.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Patch, b.Patch); c != 0 {
		return c
	}
	return comparePrerelease(a.Prerelease, b.Prerelease)
}

func comparePrerelease(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(a, b)
}

// Compare compares v to other; see the package-level Compare.
func (v Version) Compare(other Version) int {
	return Compare(v, other)
}

// LessThan returns true if v < other.
func (v Version) LessThan(other Version) bool {
	return Compare(v, other) < 0
}

// Equal reports whether v and other order equally. Build metadata and Raw
// are not considered.
func (v Version) Equal(other Version) bool {
	return Compare(v, other) == 0
}

// Sort orders vs ascending in place. The sort is stable, so versions that
// compare equal keep their input order.
func Sort(vs []Version) {
	slices.SortStableFunc(vs, Compare)
}

// Max returns the greatest version in vs. Among equal maxima the one that
// appears last wins. It reports false for an empty slice.
func Max(vs []Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	sorted := slices.Clone(vs)
	Sort(sorted)
	return sorted[len(sorted)-1], true
}
