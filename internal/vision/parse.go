package vision

import (
	"strings"
)

// ParseTags parses a model response into lowercase tags. Tags may be
// separated by commas or newlines and may carry list bullets or numbering.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	seen := make(map[string]bool)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Skip common preamble lines
		if strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "I see") || strings.HasPrefix(line, "Based on") {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 && strings.EqualFold(strings.TrimSpace(line[:idx]), "tags") {
			line = line[idx+1:]
		}

		for _, part := range strings.Split(line, ",") {
			tag := cleanTag(part)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
			if len(tags) == MaxTags {
				return tags
			}
		}
	}

	return tags
}

func cleanTag(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*•# ")
	// "1." or "2)" numbering
	if i := strings.IndexAny(s, ".)"); i > 0 && i <= 3 && isDigits(s[:i]) {
		s = s[i+1:]
	}
	s = strings.Trim(strings.TrimSpace(s), `"'.`)
	return strings.ToLower(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
