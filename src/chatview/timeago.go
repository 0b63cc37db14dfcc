package chatview

import (
	"fmt"
	"time"
)

// TimeUnit is the coarsest unit that fits an elapsed duration.
type TimeUnit string

const (
	UnitSecond TimeUnit = "second"
	UnitMinute TimeUnit = "minute"
	UnitHour   TimeUnit = "hour"
	UnitDay    TimeUnit = "day"
	UnitWeek   TimeUnit = "week"
	UnitMonth  TimeUnit = "month"
	UnitYear   TimeUnit = "year"
)

// TimeAgo is an elapsed duration expressed in a single unit.
type TimeAgo struct {
	Value int      `json:"value"`
	Unit  TimeUnit `json:"unit"`
}

// CalculateTimeAgo measures how long before now t was. Months are 30 days and
// years 365.
func CalculateTimeAgo(now, t time.Time) TimeAgo {
	seconds := int(now.Sub(t) / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days/365 > 0:
		return TimeAgo{days / 365, UnitYear}
	case days/30 > 0:
		return TimeAgo{days / 30, UnitMonth}
	case days/7 > 0:
		return TimeAgo{days / 7, UnitWeek}
	case days > 0:
		return TimeAgo{days, UnitDay}
	case hours > 0:
		return TimeAgo{hours, UnitHour}
	case minutes > 0:
		return TimeAgo{minutes, UnitMinute}
	}
	return TimeAgo{seconds, UnitSecond}
}

// String renders the short form used in chat lists, e.g. "3h ago".
func (t TimeAgo) String() string {
	switch t.Unit {
	case UnitMinute, UnitMonth:
		return fmt.Sprintf("%dm ago", t.Value)
	case UnitHour:
		return fmt.Sprintf("%dh ago", t.Value)
	case UnitDay:
		return fmt.Sprintf("%dd ago", t.Value)
	case UnitWeek:
		return fmt.Sprintf("%dw ago", t.Value)
	case UnitYear:
		return fmt.Sprintf("%dy ago", t.Value)
	}
	return "Just now"
}

// FormatTimeAgo is CalculateTimeAgo(now, t).String().
func FormatTimeAgo(now, t time.Time) string {
	return CalculateTimeAgo(now, t).String()
}
