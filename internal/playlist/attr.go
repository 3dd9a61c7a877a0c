package playlist

import "strings"

const groupTitleAttr = `group-title="`

// GroupTitle returns the value of the first non-empty, terminated group-title="..." attribute on line.
func GroupTitle(line string) (string, bool) {
	rest := line
	for {
		start := strings.Index(rest, groupTitleAttr)
		if start < 0 {
			return "", false
		}
		rest = rest[start+len(groupTitleAttr):]

		end := strings.IndexAny(rest, "\"\n")
		if end < 0 || rest[end] == '\n' {
			return "", false
		}
		if end > 0 {
			return rest[:end], true
		}
		rest = rest[1:]
	}
}
