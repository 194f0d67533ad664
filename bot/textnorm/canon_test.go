package textnorm

import "testing"

func TestCanonicalizeEquivalence(t *testing.T) {
	want := Canonicalize("name")
	if want != "name" {
		t.Fatalf("expected plain ascii to survive, got %q", want)
	}

	cases := []struct {
		label string
		input string
	}{
		{"accented", "Nàme"},
		{"upper", "NAME"},
		{"repeated runs", "nnaaammmee"},
		{"leetspeak", "N4m3"},
		{"cyrillic and small caps", "ɴаmе"}, // а and е are Cyrillic
		{"zero width injection", "na\u200bm\u200de"},
		{"emoji padding", "name\U0001F600"},
		{"fullwidth", "ｎａｍｅ"},
	}
	for _, tc := range cases {
		if got := Canonicalize(tc.input); got != want {
			t.Errorf("%s: Canonicalize(%q) = %q, want %q", tc.label, tc.input, got, want)
		}
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", "name", "Nàme", "N4m3", "ɴаmе", "ผู้ชาย",
		"\u200b\u200e", "🔥🔥🔥", "a(b)c 123", "ЗДРАВСТВУЙ",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCanonicalizeDropsNonLetters(t *testing.T) {
	if got := Canonicalize("a-b_c!?"); got != "abc" {
		t.Fatalf("expected punctuation dropped, got %q", got)
	}
	// digits fold to letters before the letter filter, by design
	if got := Canonicalize("n0b"); got != "nob" {
		t.Fatalf("expected leet digits folded, got %q", got)
	}
}

func TestContainsEmoji(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"hello", false},
		{"สวัสดี", false},
		{"hi \U0001F600", true},
		{"check ✅", true},
		{"joined a\u200db", true},
		{"variant \uFE0F", true},
		{"\U0001F1F9\U0001F1ED", true}, // flag pair
		{"\U0001F1F9 alone", false},    // single regional indicator is not a flag
	}
	for _, tc := range cases {
		if got := ContainsEmoji(tc.input); got != tc.want {
			t.Errorf("ContainsEmoji(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
