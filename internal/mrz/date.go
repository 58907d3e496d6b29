package mrz

import "time"

// ParseDate converts an MRZ YYMMDD date into a calendar date. Two-digit
// years below 30 resolve to the 2000s, the rest to the 1900s. Returns false
// for anything that is not a real calendar date.
func ParseDate(s string) (time.Time, bool) {
	if len(s) != 6 {
		return time.Time{}, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, false
		}
	}
	yy := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[2]-'0')*10 + int(s[3]-'0')
	dd := int(s[4]-'0')*10 + int(s[5]-'0')

	year := 1900 + yy
	if yy < 30 {
		year = 2000 + yy
	}
	if mm < 1 || mm > 12 || dd < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range days (e.g. Feb 30 -> Mar 2);
	// reject anything that moved.
	if t.Day() != dd || t.Month() != time.Month(mm) {
		return time.Time{}, false
	}
	return t, true
}
