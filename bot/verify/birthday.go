package verify

import (
	"regexp"
	"strconv"
	"time"
)

var birthdayRe = regexp.MustCompile(`^\s*(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})\s*$`)

// ParseBirthday parses D[./-]M[./-]YYYY text into midnight of that day in
// now's time zone. It rejects impossible calendar dates, dates after now
// and years outside [1900, now.Year()].
func ParseBirthday(text string, now time.Time) (time.Time, bool) {
	m := birthdayRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	bday := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	// time.Date normalizes out-of-range components (31/02 becomes 02/03 or
	// 03/03); a round-trip mismatch means the calendar date did not exist
	if bday.Year() != year || bday.Month() != time.Month(month) || bday.Day() != day {
		return time.Time{}, false
	}
	if bday.After(now) {
		return time.Time{}, false
	}
	if year < 1900 || year > now.Year() {
		return time.Time{}, false
	}
	return bday, true
}

// AgeAt returns whole years between birthday and now, one less when the
// birthday has not been reached yet this year, floored at zero.
func AgeAt(birthday, now time.Time) int {
	years := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() ||
		(now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
