// Package verify implements the identity-verification core: input
// validation, gender/age alias resolution, birthday arithmetic, the
// per-request decision lock and the submission/decision service.
package verify

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/nopparoot15/Saltybot/bot"
)

// aliasFold is the light fold used only for alias lookup: lowercase and
// strip whitespace plus the separator characters moderators tend to type.
// Alias tables are curated exact strings, not adversarial input, so the
// full canonicalizer is deliberately not applied here.
func aliasFold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '.', '-', '_', '/', '\\':
			return -1
		}
		return r
	}, s)
}

func foldSet(raw ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		set[aliasFold(s)] = struct{}{}
	}
	return set
}

var (
	maleAliases = foldSet(
		"ช", "ชา", "ชาย", "ผู้ชาย", "เพศชาย", "ชายแท้", "ผช", "หนุ่ม", "เขา",
		"male", "man", "boy", "m", "masculine", "he", "him",
	)
	femaleAliases = foldSet(
		"ห", "หญ", "หญิง", "ผู้หญิง", "เพศหญิง", "ผญ", "สาว",
		"female", "woman", "girl", "f", "feminine", "she", "her",
	)
	lgbtAliases = foldSet(
		"lgbt", "lgbtq", "lgbtq+", "nonbinary", "non-binary", "nb", "enby",
		"trans", "genderqueer", "bigender", "agender", "genderfluid", "queer",
		"อื่น", "เพศทางเลือก", "สาวสอง", "ทอม", "ดี้", "ไบ",
	)
	genderUndisclosedAliases = foldSet(
		"ไม่ระบุ", "ไม่บอก", "ไม่สะดวก", "ไม่อยากเปิดเผย",
		"prefer not to say", "undisclosed", "unspecified", "unknown",
		"private", "secret", "n/a", "na", "none", "-", "—",
	)

	malePrefixes   = []string{"ช", "ชา", "ชาย", "ผู้ช", "เพศช", "m", "ma", "man"}
	femalePrefixes = []string{"ห", "หญ", "หญิ", "หญิง", "ผู้ห", "เพศห", "f", "fe", "woman"}

	ageUndisclosedAliases = foldSet(
		"ไม่ระบุ", "ไม่บอก", "prefer not to say", "undisclosed", "unknown",
		"private", "na", "n/a", "x", "-", "—",
	)
)

// ResolveGenderBucket maps free gender text to a bucket. It is total:
// unrecognized input resolves to the undisclosed bucket.
func ResolveGenderBucket(text string) bot.RoleBucket {
	t := aliasFold(text)
	if _, ok := maleAliases[t]; ok {
		return bot.BucketMale
	}
	if _, ok := femaleAliases[t]; ok {
		return bot.BucketFemale
	}
	if _, ok := lgbtAliases[t]; ok {
		return bot.BucketLGBT
	}
	if _, ok := genderUndisclosedAliases[t]; ok {
		return bot.BucketGenderUndisclosed
	}
	if t != "" {
		// partial or truncated words
		for _, p := range malePrefixes {
			if strings.HasPrefix(t, aliasFold(p)) {
				return bot.BucketMale
			}
		}
		for _, p := range femalePrefixes {
			if strings.HasPrefix(t, aliasFold(p)) {
				return bot.BucketFemale
			}
		}
	}
	return bot.BucketGenderUndisclosed
}

// IsAgeUndisclosed reports whether age text means "prefer not to say".
func IsAgeUndisclosed(text string) bool {
	t := aliasFold(text)
	if t == "" {
		return true
	}
	_, ok := ageUndisclosedAliases[t]
	return ok
}

// ageBracket maps one inclusive age range to its bucket. Brackets are
// contiguous and exhaustive from 0 to 200.
type ageBracket struct {
	lo, hi int
	bucket bot.RoleBucket
}

var ageBrackets = []ageBracket{
	{0, 12, bot.BucketAge0To12},
	{13, 15, bot.BucketAge13To15},
	{16, 18, bot.BucketAge16To18},
	{19, 21, bot.BucketAge19To21},
	{22, 24, bot.BucketAge22To24},
	{25, 29, bot.BucketAge25To29},
	{30, 34, bot.BucketAge30To34},
	{35, 39, bot.BucketAge35To39},
	{40, 44, bot.BucketAge40To44},
	{45, 49, bot.BucketAge45To49},
	{50, 54, bot.BucketAge50To54},
	{55, 59, bot.BucketAge55To59},
	{60, 64, bot.BucketAge60To64},
	{65, 200, bot.BucketAge65Up},
}

// ResolveAgeBucket maps age text to a bucket. The second return value is
// false when the text is neither an undisclosed alias nor an integer
// within a bracket; the caller must leave the age unresolved, not error.
func ResolveAgeBucket(ageText string) (bot.RoleBucket, bool) {
	if IsAgeUndisclosed(ageText) {
		return bot.BucketAgeUndisclosed, true
	}
	age, err := strconv.Atoi(strings.TrimSpace(ageText))
	if err != nil {
		return "", false
	}
	return ResolveAgeBucketFromYears(age)
}

// ResolveAgeBucketFromYears maps an integer age to its bracket bucket.
func ResolveAgeBucketFromYears(age int) (bot.RoleBucket, bool) {
	for _, b := range ageBrackets {
		if age >= b.lo && age <= b.hi {
			return b.bucket, true
		}
	}
	return "", false
}
