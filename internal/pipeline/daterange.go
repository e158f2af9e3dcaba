package pipeline

import (
	"time"
)

const dayFormat = "2006-01-02"

// DatePrefix 取 ISO 风格时间串的日期部分（前 10 位）。
// 日期筛选全部基于这个前缀做字符串比较，不做 time.Parse，
// 避免时区换算造成前端/后端相差一天。
func DatePrefix(s string) string {
	if len(s) < 10 {
		return s
	}
	return s[:10]
}

// DateRange 闭区间日期范围，YYYY-MM-DD。空串表示该端不限。
type DateRange struct {
	From string
	To   string
}

// IsZero 两端都不限
func (r DateRange) IsZero() bool {
	return r.From == "" && r.To == ""
}

// Contains 判断时间串是否落在范围内（含两端），按前缀比较
func (r DateRange) Contains(dateStr string) bool {
	day := DatePrefix(dateStr)
	if day == "" {
		return r.IsZero()
	}
	if r.From != "" && day < r.From {
		return false
	}
	if r.To != "" && day > r.To {
		return false
	}
	return true
}

// RangeToday 当天
func RangeToday(today time.Time) DateRange {
	day := today.Format(dayFormat)
	return DateRange{From: day, To: day}
}

// RangeThisWeek 本周一到周六。周日算在上一周里
// （上一个周一到昨天的周六），不是即将开始的那一周。
func RangeThisWeek(today time.Time) DateRange {
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := today.AddDate(0, 0, -(weekday - 1))
	saturday := monday.AddDate(0, 0, 5)
	return DateRange{
		From: monday.Format(dayFormat),
		To:   saturday.Format(dayFormat),
	}
}

// RangeLastDays 最近 N 天，含今天
func RangeLastDays(today time.Time, days int) DateRange {
	if days < 1 {
		days = 1
	}
	from := today.AddDate(0, 0, -(days - 1))
	return DateRange{
		From: from.Format(dayFormat),
		To:   today.Format(dayFormat),
	}
}

// PresetRange 按预设名计算范围，认不出的预设返回不限
func PresetRange(preset string, today time.Time) DateRange {
	switch preset {
	case "today":
		return RangeToday(today)
	case "this_week":
		return RangeThisWeek(today)
	case "last_7_days":
		return RangeLastDays(today, 7)
	case "last_30_days":
		return RangeLastDays(today, 30)
	default:
		return DateRange{}
	}
}
