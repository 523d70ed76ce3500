package schedule

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
)

var (
	ErrInvalidTime = errors.New("invalid time of day, expected HH:mm")

	timeOfDayRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)
)

// TimeToMinutes converts a 24-hour "HH:mm" time of day to minutes since midnight, in [0, 1439].
func TimeToMinutes(s string) (int, error) {
	if !timeOfDayRegex.MatchString(s) {
		return 0, errors.Wrapf(ErrInvalidTime, "parsing %q", s)
	}
	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	minutes := int(s[3]-'0')*10 + int(s[4]-'0')
	return hours*60 + minutes, nil
}

// MinutesToTime is the inverse of TimeToMinutes.
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// IsTimeOfDay reports whether s is a valid "HH:mm" time of day.
func IsTimeOfDay(s string) bool {
	return timeOfDayRegex.MatchString(s)
}
