package models

import "time"

// Age bands used to select age-appropriate activity content
const (
	AgeBand6to9   = "6-9"
	AgeBand10to12 = "10-12"
	AgeBand13to16 = "13-16"

	// DefaultAgeBand is used when no child profile or birthday is available
	DefaultAgeBand = AgeBand6to9
)

// AgeBandForBirthday maps a child's birthday to an age band. Ages below 6
// fall into the lowest band and ages above 16 into the highest.
func AgeBandForBirthday(birthday, now time.Time) string {
	age := ageAt(birthday, now)
	switch {
	case age <= 9:
		return AgeBand6to9
	case age <= 12:
		return AgeBand10to12
	default:
		return AgeBand13to16
	}
}

// ageAt computes whole years between birthday and now, adjusting for
// whether the birthday has occurred yet this year
func ageAt(birthday, now time.Time) int {
	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() ||
		(now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	return age
}
