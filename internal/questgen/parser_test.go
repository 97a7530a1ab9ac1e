package questgen

import (
	"strings"
	"testing"
)

func TestParseQuestsWellFormedSections(t *testing.T) {
	blob := `Quest: Meet someone working on Layer 2 solutions
Description: Find out which L2 project they're working on
Tags: L2, scaling, networking

Quest: Find three people who have deployed a smart contract
Description: Compare experiences about different chains
Tags: development, smart contracts`

	quests := ParseQuests(blob)
	if len(quests) != 2 {
		t.Fatalf("expected 2 quests, got %d", len(quests))
	}

	if quests[0].Title != "Meet someone working on Layer 2 solutions" {
		t.Errorf("unexpected title: %q", quests[0].Title)
	}
	if quests[0].Description != "Find out which L2 project they're working on" {
		t.Errorf("unexpected description: %q", quests[0].Description)
	}
	if len(quests[0].RawTags) != 3 || quests[0].RawTags[0] != "L2" {
		t.Errorf("unexpected tags: %v", quests[0].RawTags)
	}
	if len(quests[1].RawTags) != 2 {
		t.Errorf("expected 2 tags in second quest, got %v", quests[1].RawTags)
	}
}

func TestParseQuestsDropsMalformedSections(t *testing.T) {
	// 2 well-formed sections, 2 malformed ones (missing description,
	// missing title). Parser must yield exactly the well-formed pair.
	blob := `Quest: A valid quest
Description: With a description
Tags: defi

Quest: Missing its description line
Tags: nft

Description: Missing its quest line
Tags: gaming

Quest: Another valid quest
Description: Also complete
Tags: l2`

	quests := ParseQuests(blob)
	if len(quests) != 2 {
		t.Fatalf("expected 2 quests, got %d", len(quests))
	}
	if quests[0].Title != "A valid quest" || quests[1].Title != "Another valid quest" {
		t.Errorf("wrong sections kept: %q, %q", quests[0].Title, quests[1].Title)
	}
}

func TestParseQuestsMissingTagsKeepsSection(t *testing.T) {
	blob := `Quest: Tagless quest
Description: Tags line absent entirely`

	quests := ParseQuests(blob)
	if len(quests) != 1 {
		t.Fatalf("expected 1 quest, got %d", len(quests))
	}
	if len(quests[0].RawTags) != 0 {
		t.Errorf("expected empty tag list, got %v", quests[0].RawTags)
	}
}

func TestParseQuestsEmptyBlob(t *testing.T) {
	for _, blob := range []string{"", "   \n\n  ", "just prose with no labels"} {
		if quests := ParseQuests(blob); len(quests) != 0 {
			t.Errorf("blob %q: expected no quests, got %d", blob, len(quests))
		}
	}
}

func TestParseQuestsCRLFAndSourceOrder(t *testing.T) {
	blob := strings.Join([]string{
		"Quest: First\r\nDescription: one\r\nTags: a",
		"Quest: Second\r\nDescription: two\r\nTags: b",
	}, "\r\n\r\n")

	quests := ParseQuests(blob)
	if len(quests) != 2 {
		t.Fatalf("expected 2 quests, got %d", len(quests))
	}
	if quests[0].Title != "First" || quests[1].Title != "Second" {
		t.Errorf("source order not preserved: %q, %q", quests[0].Title, quests[1].Title)
	}
}

func TestParseQuestsTrimsTagWhitespace(t *testing.T) {
	blob := "Quest: T\nDescription: D\nTags:  defi ,  nft , "

	quests := ParseQuests(blob)
	if len(quests) != 1 {
		t.Fatalf("expected 1 quest, got %d", len(quests))
	}
	want := []string{"defi", "nft"}
	if len(quests[0].RawTags) != len(want) {
		t.Fatalf("expected %v, got %v", want, quests[0].RawTags)
	}
	for i, tag := range want {
		if quests[0].RawTags[i] != tag {
			t.Errorf("tag %d: expected %q, got %q", i, tag, quests[0].RawTags[i])
		}
	}
}
