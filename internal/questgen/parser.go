package questgen

import (
	"regexp"
	"strings"
)

// ParsedQuest is one well-formed section of a generation response.
// RawTags are as-emitted by the model, not yet filtered or normalized.
type ParsedQuest struct {
	Title       string
	Description string
	RawTags     []string
}

var (
	sectionRe     = regexp.MustCompile(`\r?\n\s*\r?\n`)
	questRe       = regexp.MustCompile(`Quest:\s*(.+)`)
	descriptionRe = regexp.MustCompile(`Description:\s*(.+)`)
	tagsRe        = regexp.MustCompile(`Tags:\s*(.+)`)
)

// ParseQuests splits a raw generation blob into blank-line-separated
// sections and extracts the Quest/Description/Tags triple from each.
// Sections missing a title or description are dropped; a missing Tags
// line yields an empty tag list. Order follows the source text.
func ParseQuests(blob string) []ParsedQuest {
	sections := sectionRe.Split(blob, -1)

	var quests []ParsedQuest
	for _, section := range sections {
		if strings.TrimSpace(section) == "" {
			continue
		}

		questMatch := questRe.FindStringSubmatch(section)
		descriptionMatch := descriptionRe.FindStringSubmatch(section)
		if questMatch == nil || descriptionMatch == nil {
			continue
		}

		var rawTags []string
		if tagsMatch := tagsRe.FindStringSubmatch(section); tagsMatch != nil {
			for _, tag := range strings.Split(tagsMatch[1], ",") {
				if t := strings.TrimSpace(tag); t != "" {
					rawTags = append(rawTags, t)
				}
			}
		}

		quests = append(quests, ParsedQuest{
			Title:       strings.TrimSpace(questMatch[1]),
			Description: strings.TrimSpace(descriptionMatch[1]),
			RawTags:     rawTags,
		})
	}
	return quests
}
