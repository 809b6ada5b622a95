package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDuration carries the message shown to moderators for a malformed duration.
var ErrInvalidDuration = errors.New("Invalid exile duration given, duration should be in the form value between 1 and 99 followed by sec, min, hour, or day. Examples: 1sec, 1min, 1hour, 1day. No action will be taken")

var durationPattern = regexp.MustCompile(`^(\d{1,2})(sec|min|hour|day)$`)

var durationUnits = map[string]time.Duration{
	"sec":  time.Second,
	"min":  time.Minute,
	"hour": time.Hour,
	"day":  24 * time.Hour,
}

// ParseDuration parses the moderation command duration grammar: one or two digits followed
// by sec, min, hour or day, e.g. "30min" or "7day".
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrInvalidDuration
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n == 0 {
		return 0, ErrInvalidDuration
	}
	return time.Duration(n) * durationUnits[m[2]], nil
}

// FormatDuration renders a command duration for humans, e.g. "3day" as "3 days".
func FormatDuration(s string) string {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	unit := map[string]string{"sec": "second", "min": "minute", "hour": "hour", "day": "day"}[m[2]]
	if n, _ := strconv.Atoi(m[1]); n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%s %s", m[1], unit)
}
