package questgen

import (
	"reflect"
	"testing"
)

func TestMatchTagsCaseInsensitive(t *testing.T) {
	got := MatchTags(
		[]string{"DeFi", "Gaming", "L2"},
		[]string{"defi", "l2", "web3"},
		nil,
	)
	want := []string{"defi", "l2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMatchTagsExtraAllowlist(t *testing.T) {
	got := MatchTags(
		[]string{"Networking", "offtopic"},
		[]string{"defi"},
		CommonTags,
	)
	want := []string{"networking"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMatchTagsIdempotent(t *testing.T) {
	candidates := []string{"DeFi", "NFT", "Web3", "unrelated"}
	reference := []string{"defi", "web3", "zk"}

	once := MatchTags(candidates, reference, nil)
	twice := MatchTags(once, reference, nil)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("match not idempotent: %v vs %v", once, twice)
	}
}

func TestMatchTagsEmptyResult(t *testing.T) {
	if got := MatchTags([]string{"a", "b"}, []string{"c"}, nil); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
	if got := MatchTags(nil, []string{"c"}, nil); len(got) != 0 {
		t.Errorf("expected no matches for nil candidates, got %v", got)
	}
}

func TestMatchTagsDeduplicates(t *testing.T) {
	got := MatchTags([]string{"DeFi", "defi", "DEFI"}, []string{"defi"}, nil)
	if len(got) != 1 || got[0] != "defi" {
		t.Errorf("expected single defi, got %v", got)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" DeFi ", "", "L2"})
	want := []string{"defi", "l2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
