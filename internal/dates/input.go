package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a date cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

var relativeUnits = []struct {
	key  string
	days int
}{
	{"days", 1},
	{"weeks", 7},
}

// ParseInput reads a user-supplied date relative to now.
//
// Accepted forms are "today", "tomorrow", "yesterday", "+N" or "-N" with an
// optional d/w unit suffix ("+2w"), and yyyy-MM-dd.
func ParseInput(value string, now time.Time) (Date, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	today := Today(now)
	switch value {
	case "":
		return Date{}, ErrInvalidDate
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}

	if value[0] == '+' || value[0] == '-' {
		days, err := parseRelative(value[1:])
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
		}
		if value[0] == '-' {
			days = -days
		}
		return today.AddDays(days), nil
	}

	return Parse(value)
}

func parseRelative(value string) (int, error) {
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0, err
	}
	suffix := value[end:]
	if suffix == "" {
		return n, nil
	}
	for _, unit := range relativeUnits {
		if strings.HasPrefix(unit.key, suffix) {
			return n * unit.days, nil
		}
	}
	return 0, errors.New("unexpected unit")
}
