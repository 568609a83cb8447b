package util

import (
	"fmt"
	"strconv"
)

// FormatCommitment 每日投入分钟数转为可读字符串：45 -> "45 minutes"，90 -> "1.5 hours"
func FormatCommitment(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes == 60:
		return "1 hour"
	default:
		hours := float64(minutes) / 60
		return strconv.FormatFloat(hours, 'f', -1, 64) + " hours"
	}
}

// FormatDuration 周数转为可读时长，4 周算 1 个月，48 周算 1 年
func FormatDuration(weeks int) string {
	switch {
	case weeks < 4:
		return plural(weeks, "week")
	case weeks == 4:
		return "1 month"
	case weeks < 48:
		months, rest := weeks/4, weeks%4
		if rest == 0 {
			return plural(months, "month")
		}
		return plural(months, "month") + " " + plural(rest, "week")
	default:
		years, rest := weeks/48, (weeks%48)/4
		if rest == 0 {
			return plural(years, "year")
		}
		return plural(years, "year") + " " + plural(rest, "month")
	}
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}
