package installer

import (
	"regexp"
	"strings"
)

var gitURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https://[^/\s]+/.+$`),
	regexp.MustCompile(`^http://[^/\s]+/.+$`),
	regexp.MustCompile(`^git@[^:\s]+:.+$`),
	regexp.MustCompile(`^ssh://git@[^/\s]+/.+$`),
	regexp.MustCompile(`^file://.+$`),
}

// ValidGitURL reports whether url looks like something git can clone:
// http(s)://host/path, git@host:path, ssh://git@host/path or file://path.
func ValidGitURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	for _, p := range gitURLPatterns {
		if p.MatchString(url) {
			return true
		}
	}
	return false
}

// sameRemote compares two remote URLs ignoring case, a trailing slash and a
// trailing .git.
func sameRemote(a, b string) bool {
	return canonicalRemote(a) == canonicalRemote(b)
}

func canonicalRemote(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimRight(url, "/")
	url = strings.TrimSuffix(url, ".git")
	return strings.ToLower(url)
}
