package version

import "strings"

const tagRefPrefix = "refs/tags/"

// Normalize strips git noise from a tag, ref or describe string so that the
// result can be handed to Parse. It never fails; input that still does not
// look like a version is left for Parse to reject.
//
//	refs/tags/v4.2.2-5-g1a2b3c4  ->  4.2.2
//	release/4.2.2-20240901       ->  4.2.2-20240901
//
// Normalize is idempotent.
func Normalize(raw string) string {
	s := strings.TrimPrefix(raw, tagRefPrefix)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	// Suffixes are stripped repeatedly, not once, so that Normalize stays
	// idempotent: "1.0.0-3-gabc-4-gdef" becomes "1.0.0", where a single strip
	// would leave the prerelease "1.0.0-3-gabc".
	for {
		trimmed := trimDescribeSuffix(s)
		if trimmed == s {
			break
		}
		s = trimmed
	}
	if len(s) > 1 && s[0] == 'v' && isDigit(s[1]) {
		s = s[1:]
	}
	return s
}

// trimDescribeSuffix removes a trailing "-<digits>-g<hex>" as appended by
// git describe when HEAD is past the nearest tag.
func trimDescribeSuffix(s string) string {
	i := len(s)
	for i > 0 && isLowerHex(s[i-1]) {
		i--
	}
	if i == len(s) || i < 1 || s[i-1] != 'g' {
		return s
	}
	i--
	if i < 1 || s[i-1] != '-' {
		return s
	}
	i--
	end := i
	for i > 0 && isDigit(s[i-1]) {
		i--
	}
	if i == end || i < 1 || s[i-1] != '-' {
		return s
	}
	return s[:i-1]
}

func isLowerHex(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f'
}
