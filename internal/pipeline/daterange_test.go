package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDatePrefix(t *testing.T) {
	assert.Equal(t, "2024-11-20", DatePrefix("2024-11-20T10:00:00"))
	assert.Equal(t, "2024-11-20", DatePrefix("2024-11-20T23:59:59+08:00"))
	assert.Equal(t, "2024-11-20", DatePrefix("2024-11-20"))
	assert.Equal(t, "2024-11", DatePrefix("2024-11"))
	assert.Equal(t, "", DatePrefix(""))
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{From: "2024-11-20", To: "2024-11-26"}

	t.Run("inclusive both ends", func(t *testing.T) {
		assert.True(t, r.Contains("2024-11-20T00:00:00"))
		assert.True(t, r.Contains("2024-11-26T23:59:59"))
		assert.True(t, r.Contains("2024-11-23T12:00:00"))
	})

	t.Run("outside", func(t *testing.T) {
		assert.False(t, r.Contains("2024-11-19T23:59:59"))
		assert.False(t, r.Contains("2024-11-27T00:00:00"))
	})

	t.Run("open ended", func(t *testing.T) {
		assert.True(t, DateRange{From: "2024-11-20"}.Contains("2030-01-01"))
		assert.True(t, DateRange{To: "2024-11-20"}.Contains("1999-01-01"))
		assert.True(t, DateRange{}.Contains("2024-11-20"))
	})
}

func TestRangeLastDays(t *testing.T) {
	t.Run("last 7 days inclusive of today", func(t *testing.T) {
		r := RangeLastDays(day("2024-11-26"), 7)

		assert.Equal(t, "2024-11-20", r.From)
		assert.Equal(t, "2024-11-26", r.To)
		// 2024-11-20 的通话：今天是 26 号时在窗口内
		assert.True(t, r.Contains("2024-11-20T10:00:00"))
	})

	t.Run("same call falls out two days later", func(t *testing.T) {
		r := RangeLastDays(day("2024-11-28"), 7)

		assert.Equal(t, "2024-11-22", r.From)
		assert.False(t, r.Contains("2024-11-20T10:00:00"))
	})

	t.Run("last 30 days", func(t *testing.T) {
		r := RangeLastDays(day("2024-11-26"), 30)

		assert.Equal(t, "2024-10-28", r.From)
		assert.Equal(t, "2024-11-26", r.To)
	})
}

func TestRangeThisWeek(t *testing.T) {
	t.Run("midweek", func(t *testing.T) {
		// 2024-11-26 是周二
		r := RangeThisWeek(day("2024-11-26"))

		assert.Equal(t, "2024-11-25", r.From) // 周一
		assert.Equal(t, "2024-11-30", r.To)   // 周六
	})

	t.Run("monday", func(t *testing.T) {
		r := RangeThisWeek(day("2024-11-25"))

		assert.Equal(t, "2024-11-25", r.From)
		assert.Equal(t, "2024-11-30", r.To)
	})

	t.Run("saturday", func(t *testing.T) {
		r := RangeThisWeek(day("2024-11-30"))

		assert.Equal(t, "2024-11-25", r.From)
		assert.Equal(t, "2024-11-30", r.To)
	})

	t.Run("sunday belongs to previous week", func(t *testing.T) {
		// 2024-12-01 是周日：范围必须是上一个周一到周六，
		// 不是即将开始的那一周
		r := RangeThisWeek(day("2024-12-01"))

		assert.Equal(t, "2024-11-25", r.From)
		assert.Equal(t, "2024-11-30", r.To)
		assert.False(t, r.Contains("2024-12-01"))
		assert.False(t, r.Contains("2024-12-02"))
	})
}

func TestRangeToday(t *testing.T) {
	r := RangeToday(day("2024-11-26"))

	assert.Equal(t, "2024-11-26", r.From)
	assert.Equal(t, "2024-11-26", r.To)
	assert.True(t, r.Contains("2024-11-26T08:30:00"))
	assert.False(t, r.Contains("2024-11-25T23:59:59"))
}

func TestPresetRange(t *testing.T) {
	today := day("2024-11-26")

	assert.Equal(t, RangeToday(today), PresetRange("today", today))
	assert.Equal(t, RangeThisWeek(today), PresetRange("this_week", today))
	assert.Equal(t, RangeLastDays(today, 7), PresetRange("last_7_days", today))
	assert.Equal(t, RangeLastDays(today, 30), PresetRange("last_30_days", today))
	assert.True(t, PresetRange("unknown", today).IsZero())
}
