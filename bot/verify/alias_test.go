package verify

import (
	"testing"

	"github.com/nopparoot15/Saltybot/bot"
)

func TestResolveGenderBucket(t *testing.T) {
	cases := []struct {
		input string
		want  bot.RoleBucket
	}{
		{"ผู้ชาย", bot.BucketMale},
		{"MALE", bot.BucketMale},
		{"m", bot.BucketMale},
		{"ชายแท้", bot.BucketMale},
		{"ผู้หญิง", bot.BucketFemale},
		{"female", bot.BucketFemale},
		{"f", bot.BucketFemale},
		{"lgbtq+", bot.BucketLGBT},
		{"Non-Binary", bot.BucketLGBT},
		{"เพศทางเลือก", bot.BucketLGBT},
		{"ไม่ระบุ", bot.BucketGenderUndisclosed},
		{"prefer not to say", bot.BucketGenderUndisclosed},
		{"", bot.BucketGenderUndisclosed},
		{"dragon", bot.BucketGenderUndisclosed},
		// prefix fallback for truncated words
		{"masc", bot.BucketMale},
		{"fem", bot.BucketFemale},
		{"ผู้ชา", bot.BucketMale},
	}
	for _, tc := range cases {
		if got := ResolveGenderBucket(tc.input); got != tc.want {
			t.Errorf("ResolveGenderBucket(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestResolveAgeBucket(t *testing.T) {
	cases := []struct {
		input    string
		want     bot.RoleBucket
		resolved bool
	}{
		{"21", bot.BucketAge19To21, true},
		{"12", bot.BucketAge0To12, true},
		{"0", bot.BucketAge0To12, true},
		{"25", bot.BucketAge25To29, true},
		{"65", bot.BucketAge65Up, true},
		{"200", bot.BucketAge65Up, true},
		{"999", "", false},
		{"-3", "", false},
		{"twenty", "", false},
		{"", bot.BucketAgeUndisclosed, true},
		{"ไม่ระบุ", bot.BucketAgeUndisclosed, true},
		{"n/a", bot.BucketAgeUndisclosed, true},
	}
	for _, tc := range cases {
		got, resolved := ResolveAgeBucket(tc.input)
		if resolved != tc.resolved || got != tc.want {
			t.Errorf("ResolveAgeBucket(%q) = (%v, %v), want (%v, %v)",
				tc.input, got, resolved, tc.want, tc.resolved)
		}
	}
}

func TestAgeBracketsContiguous(t *testing.T) {
	prev := -1
	for _, b := range ageBrackets {
		if b.lo != prev+1 {
			t.Fatalf("gap before bracket %v: lo=%d prev hi=%d", b.bucket, b.lo, prev)
		}
		if b.hi < b.lo {
			t.Fatalf("inverted bracket %v", b.bucket)
		}
		prev = b.hi
	}
	if prev != 200 {
		t.Fatalf("brackets end at %d, want 200", prev)
	}
}
