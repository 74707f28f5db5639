package git

import "strings"

const tagRefMarker = "refs/tags/"

// ParseTagList splits `git tag -l` output into tag names, dropping blank
// lines. A positive limit keeps only the first limit entries.
func ParseTagList(out string, limit int) []string {
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tags = append(tags, line)
		if limit > 0 && len(tags) == limit {
			break
		}
	}
	return tags
}

// ParseLsRemote extracts tag names from `git ls-remote --tags` output. Each
// line is "<sha>\trefs/tags/<name>". Peeled entries (^{}) are skipped so a
// tag is listed once.
func ParseLsRemote(out string) []string {
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		_, name, ok := strings.Cut(line, tagRefMarker)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.HasSuffix(name, "^{}") {
			continue
		}
		tags = append(tags, name)
	}
	return tags
}

// nonEmptyLines returns the trimmed, non-blank lines of out.
func nonEmptyLines(out string) []string {
	return ParseTagList(out, 0)
}
