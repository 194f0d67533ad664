package handler

import (
	"strings"

	"github.com/nopparoot15/Saltybot/bot/verify"
)

// Form field labels accepted in Thai and English. Matching is
// case-insensitive and tolerant of a trailing colon or equals sign.
var fieldLabels = map[string]string{
	"ชื่อเล่น": "nickname",
	"ชื่อ":     "nickname",
	"nickname": "nickname",
	"name":     "nickname",
	"อายุ":     "age",
	"age":      "age",
	"เพศ":      "gender",
	"gender":   "gender",
	"วันเกิด":  "birthday",
	"birthday": "birthday",
}

// fieldOrder is the positional fallback for unlabeled lines.
var fieldOrder = []string{"nickname", "age", "gender", "birthday"}

// ParseForm extracts a submission from the message text following the
// command line. Lines may be labeled ("อายุ: 25") or positional; the
// second return value is false when no field was filled.
func ParseForm(text string) (verify.Submission, bool) {
	lines := strings.Split(text, "\n")

	fields := make(map[string]string, 4)
	positional := 0
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if i == 0 && strings.HasPrefix(line, "/") {
			// command line may carry inline fields after the command itself
			rest := strings.TrimSpace(strings.TrimPrefix(line, firstWord(line)))
			if rest == "" {
				continue
			}
			line = rest
		}

		if field, value, ok := splitLabeled(line); ok {
			if _, dup := fields[field]; !dup {
				fields[field] = value
			}
			continue
		}

		for positional < len(fieldOrder) {
			field := fieldOrder[positional]
			positional++
			if _, taken := fields[field]; !taken {
				fields[field] = line
				break
			}
		}
	}

	sub := verify.Submission{
		Nickname:     fields["nickname"],
		AgeText:      fields["age"],
		GenderText:   fields["gender"],
		BirthdayText: fields["birthday"],
	}
	filled := sub.Nickname != "" || sub.AgeText != "" || sub.GenderText != "" || sub.BirthdayText != ""
	return sub, filled
}

func firstWord(s string) string {
	if idx := strings.IndexAny(s, " \t"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func splitLabeled(line string) (field, value string, ok bool) {
	idx := strings.IndexAny(line, ":=")
	if idx < 0 {
		return "", "", false
	}
	label := strings.ToLower(strings.TrimSpace(line[:idx]))
	field, known := fieldLabels[label]
	if !known {
		return "", "", false
	}
	return field, strings.TrimSpace(line[idx+1:]), true
}
