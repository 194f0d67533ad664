package verify

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/nopparoot15/Saltybot/bot"
	"github.com/nopparoot15/Saltybot/bot/textnorm"
)

// RejectReason enumerates user-correctable validation failures.
type RejectReason int

const (
	ReasonNone RejectReason = iota
	ReasonInvalidAge
	ReasonInvalidNickname
	ReasonNicknameMatchesOwnName
	ReasonInvalidGender
	ReasonInvalidBirthday
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInvalidAge:
		return "invalid age"
	case ReasonInvalidNickname:
		return "invalid nickname"
	case ReasonNicknameMatchesOwnName:
		return "nickname matches platform name"
	case ReasonInvalidGender:
		return "invalid gender"
	case ReasonInvalidBirthday:
		return "invalid birthday"
	default:
		return "unknown"
	}
}

// ValidationError carries the rejection reason for a failed submission.
type ValidationError struct {
	Reason RejectReason
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason.String()
}

// Submission is the raw form input; all fields are optional.
type Submission struct {
	Nickname     string
	AgeText      string
	GenderText   string
	BirthdayText string
}

// invalidSymbols are never allowed in nickname or gender text.
var invalidSymbols = map[rune]struct{}{}

func init() {
	for _, r := range `=+*/@#$%^&*()<>?|{}[]"'\~` + "`" {
		invalidSymbols[r] = struct{}{}
	}
}

var (
	ageDigitsRe   = regexp.MustCompile(`^\d{1,3}$`)
	parenSuffixRe = regexp.MustCompile(`\s*\(.*?\)\s*$`)
)

// BaseDisplayName strips a trailing parenthetical suffix from a display
// name ("Nok (rest)" becomes "Nok").
func BaseDisplayName(name string) string {
	return strings.TrimSpace(parenSuffixRe.ReplaceAllString(strings.TrimSpace(name), ""))
}

// CanonicalNameSet canonicalizes every platform name plus its base form.
func CanonicalNameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names)*2)
	for _, n := range names {
		if n == "" {
			continue
		}
		if c := textnorm.Canonicalize(n); c != "" {
			set[c] = struct{}{}
		}
		if base := BaseDisplayName(n); base != "" {
			if c := textnorm.Canonicalize(base); c != "" {
				set[c] = struct{}{}
			}
		}
	}
	return set
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasInvalidSymbol(s string) bool {
	for _, r := range s {
		if _, bad := invalidSymbols[r]; bad {
			return true
		}
	}
	return false
}

// ValidateSubmission checks every field and returns the trimmed submission
// or a ValidationError. It mutates nothing: a submission must fully
// validate before any state changes.
func ValidateSubmission(raw Submission, platformNames []string, now time.Time) (Submission, error) {
	out := Submission{
		Nickname:     strings.TrimSpace(raw.Nickname),
		AgeText:      strings.TrimSpace(raw.AgeText),
		GenderText:   strings.TrimSpace(raw.GenderText),
		BirthdayText: strings.TrimSpace(raw.BirthdayText),
	}

	if out.AgeText != "" && !ageDigitsRe.MatchString(out.AgeText) && !IsAgeUndisclosed(out.AgeText) {
		return Submission{}, &ValidationError{Reason: ReasonInvalidAge}
	}

	if out.Nickname != "" {
		n := utf8.RuneCountInString(out.Nickname)
		if n < 2 || n > 10 ||
			hasDigit(out.Nickname) ||
			hasInvalidSymbol(out.Nickname) ||
			textnorm.ContainsEmoji(out.Nickname) {
			return Submission{}, &ValidationError{Reason: ReasonInvalidNickname}
		}
		canon := textnorm.Canonicalize(out.Nickname)
		if _, clash := CanonicalNameSet(platformNames)[canon]; clash {
			return Submission{}, &ValidationError{Reason: ReasonNicknameMatchesOwnName}
		}
	}

	if out.GenderText != "" {
		if hasDigit(out.GenderText) ||
			hasInvalidSymbol(out.GenderText) ||
			textnorm.ContainsEmoji(out.GenderText) {
			return Submission{}, &ValidationError{Reason: ReasonInvalidGender}
		}
	}

	if out.BirthdayText != "" {
		if _, ok := ParseBirthday(out.BirthdayText, now); !ok {
			return Submission{}, &ValidationError{Reason: ReasonInvalidBirthday}
		}
	}

	return out, nil
}

// ResolveAgeBuckets applies the decision-time priority rule: an age bucket
// derived from a parseable birthday wins over the raw age-text bucket.
// The second return value is false when neither source resolves.
func ResolveAgeBuckets(ageText, birthdayText string, now time.Time) (bot.RoleBucket, bool) {
	if birthdayText != "" {
		if bday, ok := ParseBirthday(birthdayText, now); ok {
			if bucket, ok := ResolveAgeBucketFromYears(AgeAt(bday, now)); ok {
				return bucket, true
			}
		}
	}
	return ResolveAgeBucket(ageText)
}
