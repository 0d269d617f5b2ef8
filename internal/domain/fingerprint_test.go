package domain

import (
	"strings"
	"testing"
)

func TestFingerprintContentAddressing(t *testing.T) {
	t.Parallel()

	a := BasicContent{Question: "capital of France?", Answer: "Paris"}.Fingerprint()
	b := BasicContent{Question: "capital of France?", Answer: "Paris"}.Fingerprint()
	if a != b {
		t.Error("Expected identical content to produce identical fingerprints")
	}

	c := BasicContent{Question: "capital of France?", Answer: "Paris "}.Fingerprint()
	if a == c {
		t.Error("Expected different content to produce different fingerprints")
	}
}

func TestFingerprintFieldBoundaries(t *testing.T) {
	t.Parallel()

	// Question "ab" + answer "c" must not collide with "a" + "bc": the
	// type tag and field bytes feed the hash in a fixed order, and moving
	// a byte across the field boundary changes the card.
	a := BasicContent{Question: "ab", Answer: "c"}.Fingerprint()
	b := BasicContent{Question: "a", Answer: "bc"}.Fingerprint()
	if a == b {
		t.Error("Expected field boundary to affect the fingerprint")
	}
}

func TestFingerprintTypeTag(t *testing.T) {
	t.Parallel()

	basic := BasicContent{Question: "x", Answer: "y"}.Fingerprint()
	cloze := ClozeContent{Text: "xy", Start: 0, End: 0}.Fingerprint()
	if basic == cloze {
		t.Error("Expected basic and cloze content to never collide")
	}
}

func TestClozeSiblingsShareFamily(t *testing.T) {
	t.Parallel()

	first := ClozeContent{Text: "alpha beta", Start: 0, End: 4}
	second := ClozeContent{Text: "alpha beta", Start: 6, End: 9}

	if first.Fingerprint() == second.Fingerprint() {
		t.Error("Expected sibling deletions to have distinct fingerprints")
	}
	if first.FamilyFingerprint() != second.FamilyFingerprint() {
		t.Error("Expected sibling deletions to share a family fingerprint")
	}
	if first.FamilyFingerprint() == first.Fingerprint() {
		t.Error("Expected family fingerprint to differ from the card's own")
	}
}

func TestParseFingerprintRoundTrip(t *testing.T) {
	t.Parallel()

	fp := BasicContent{Question: "q", Answer: "a"}.Fingerprint()
	s := fp.String()
	if len(s) != 64 || s != strings.ToLower(s) {
		t.Errorf("Expected 64 lowercase hex chars, got %q", s)
	}

	parsed, err := ParseFingerprint(s)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if parsed != fp {
		t.Error("Expected round trip to preserve the fingerprint")
	}
}

func TestParseFingerprintRejectsBadInput(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "zz", "abcd", strings.Repeat("0", 63)} {
		if _, err := ParseFingerprint(s); err == nil {
			t.Errorf("Expected error for %q", s)
		}
	}
}

func TestFingerprintCompare(t *testing.T) {
	t.Parallel()

	lo := Fingerprint{0x01}
	hi := Fingerprint{0x02}
	if lo.Compare(hi) >= 0 {
		t.Error("Expected lo < hi")
	}
	if hi.Compare(lo) <= 0 {
		t.Error("Expected hi > lo")
	}
	if lo.Compare(lo) != 0 {
		t.Error("Expected lo == lo")
	}
}
