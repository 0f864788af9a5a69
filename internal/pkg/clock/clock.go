package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Wall-clock times are carried as minutes since local midnight (0-1439).
// NoTime marks a value that could not be parsed or was never set; it must
// never leak into arithmetic as if it were a real time.
const NoTime = -1

const MinutesPerDay = 24 * 60

// ParseClock parses "h:mm AM/PM" or 24-hour "HH:mm" into minutes since
// midnight. Invalid input yields NoTime, never an error or panic.
func ParseClock(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoTime
	}

	upper := strings.ToUpper(s)
	meridiem := ""
	switch {
	case strings.HasSuffix(upper, "AM"):
		meridiem = "AM"
	case strings.HasSuffix(upper, "PM"):
		meridiem = "PM"
	}
	if meridiem != "" {
		upper = strings.TrimSpace(upper[:len(upper)-2])
	}

	parts := strings.Split(upper, ":")
	if len(parts) != 2 {
		return NoTime
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return NoTime
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return NoTime
	}
	if minute < 0 || minute > 59 {
		return NoTime
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return NoTime
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return NoTime
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return NoTime
		}
	}

	return hour*60 + minute
}

// FormatClock renders minutes since midnight as "h:mm AM". NoTime and
// out-of-range values render as an empty string.
func FormatClock(m int) string {
	if m < 0 || m >= MinutesPerDay {
		return ""
	}
	hour := m / 60
	minute := m % 60
	meridiem := "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		meridiem = "PM"
	case hour > 12:
		hour -= 12
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}

// Overlaps reports whether half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Touching endpoints do not overlap. Intervals
// carrying NoTime never overlap anything.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	if aStart == NoTime || aEnd == NoTime || bStart == NoTime || bEnd == NoTime {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// Duration returns end-start for a same-day interval. Inverted, equal, or
// sentinel inputs yield 0; overnight intervals are not supported here.
func Duration(start, end int) int {
	if start == NoTime || end == NoTime {
		return 0
	}
	if end <= start {
		return 0
	}
	return end - start
}

// CivilDate truncates t to midnight of its calendar day in loc.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayKey formats t's civil date in loc as "2006-01-02". Used as a
// deterministic grouping key.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// WeekStart returns midnight of the Monday beginning t's civil week in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	day := CivilDate(t, loc)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns midnight of the Sunday ending t's civil week in loc.
func WeekEnd(t time.Time, loc *time.Location) time.Time {
	return WeekStart(t, loc).AddDate(0, 0, 6)
}
