package util

import (
	"fmt"
	"time"
)

// ParseLocalDate 解析 YYYY-MM-DD，只关心日历日，不做时区换算
func ParseLocalDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidLocalDate, s)
	}
	return t, nil
}

// DaysBetween 返回 from 到 to 相差的日历天数。from 为空或无法解析时 ok=false
func DaysBetween(from, to string) (days int, ok bool) {
	if from == "" {
		return 0, false
	}
	a, err := ParseLocalDate(from)
	if err != nil {
		return 0, false
	}
	b, err := ParseLocalDate(to)
	if err != nil {
		return 0, false
	}
	return int(b.Sub(a).Hours() / 24), true
}

func Today() string {
	return time.Now().Format(DateFormat)
}
