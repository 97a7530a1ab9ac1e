package questgen

import "strings"

// CommonTags are always accepted regardless of attendee or event tags.
var CommonTags = []string{"networking"}

// MatchTags returns the candidates whose lowercase form appears in
// reference or extra. Pure; the result is lowercased and deduplicated,
// preserving candidate order. Matching on the canonical lowercase form
// makes the function idempotent.
func MatchTags(candidates, reference, extra []string) []string {
	allowed := make(map[string]struct{}, len(reference)+len(extra))
	for _, tag := range reference {
		allowed[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	for _, tag := range extra {
		allowed[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}

	var matched []string
	seen := make(map[string]struct{})
	for _, candidate := range candidates {
		normalized := strings.ToLower(strings.TrimSpace(candidate))
		if normalized == "" {
			continue
		}
		if _, ok := allowed[normalized]; !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		matched = append(matched, normalized)
	}
	return matched
}

// NormalizeTags lowercases and trims a tag list, dropping empties.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
