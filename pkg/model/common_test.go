package model

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{"午夜", "00:00", 0, false},
		{"早九点", "09:00", 540, false},
		{"带分钟", "14:30", 870, false},
		{"一天结束前", "23:59", 1439, false},
		{"格式错误", "9am", 0, true},
		{"空字符串", "", 0, true},
		{"超出范围", "25:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseClock(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClockRange_Minutes(t *testing.T) {
	tests := []struct {
		name     string
		r        ClockRange
		expected int
	}{
		{"普通白班", ClockRange{"09:00", "17:00"}, 480},
		{"半小时", ClockRange{"10:00", "10:30"}, 30},
		{"跨日夜班", ClockRange{"22:00", "06:00"}, 480},
		{"起止相同视为跨日", ClockRange{"08:00", "08:00"}, 1440},
		{"非法时间", ClockRange{"abc", "17:00"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Minutes(); got != tt.expected {
				t.Errorf("Minutes() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestClockRange_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     ClockRange
		expected bool
	}{
		{"部分重叠", ClockRange{"09:00", "13:00"}, ClockRange{"12:00", "17:00"}, true},
		{"完全包含", ClockRange{"08:00", "20:00"}, ClockRange{"10:00", "12:00"}, true},
		{"首尾相接不算重叠", ClockRange{"09:00", "12:00"}, ClockRange{"12:00", "15:00"}, false},
		{"完全分离", ClockRange{"08:00", "10:00"}, ClockRange{"14:00", "16:00"}, false},
		{"非法时间", ClockRange{"bad", "10:00"}, ClockRange{"09:00", "11:00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.expected {
				t.Errorf("Overlaps() = %v, expected %v", got, tt.expected)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.expected {
				t.Errorf("Overlaps() 应该对称，反向 = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestClockRange_ContainsRange(t *testing.T) {
	tests := []struct {
		name     string
		outer    ClockRange
		inner    ClockRange
		expected bool
	}{
		{"完全包含", ClockRange{"08:00", "20:00"}, ClockRange{"09:00", "17:00"}, true},
		{"边界相等", ClockRange{"09:00", "17:00"}, ClockRange{"09:00", "17:00"}, true},
		{"起点超出", ClockRange{"09:00", "17:00"}, ClockRange{"08:00", "12:00"}, false},
		{"终点超出", ClockRange{"09:00", "17:00"}, ClockRange{"12:00", "18:00"}, false},
		{"完全不沾边", ClockRange{"09:00", "12:00"}, ClockRange{"14:00", "16:00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outer.ContainsRange(tt.inner); got != tt.expected {
				t.Errorf("ContainsRange() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestDateWeekday(t *testing.T) {
	// 2026-08-24 是星期一
	w, err := DateWeekday("2026-08-24")
	if err != nil {
		t.Fatalf("DateWeekday() error = %v", err)
	}
	if w != time.Monday {
		t.Errorf("DateWeekday(2026-08-24) = %v, expected Monday", w)
	}

	if _, err := DateWeekday("2026/08/24"); err == nil {
		t.Error("非法日期格式应返回错误")
	}
}

func TestMatchWeekday(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		weekday  time.Weekday
		expected bool
	}{
		{"全称小写", "monday", time.Monday, true},
		{"全称大写", "MONDAY", time.Monday, true},
		{"三字母缩写", "mon", time.Monday, true},
		{"缩写带空格", " fri ", time.Friday, true},
		{"不匹配", "tuesday", time.Monday, false},
		{"空字符串", "", time.Monday, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchWeekday(tt.input, tt.weekday); got != tt.expected {
				t.Errorf("MatchWeekday(%q, %v) = %v, expected %v", tt.input, tt.weekday, got, tt.expected)
			}
		})
	}
}

func TestIsWeekend(t *testing.T) {
	if !IsWeekend(time.Saturday) || !IsWeekend(time.Sunday) {
		t.Error("周六周日应为周末")
	}
	if IsWeekend(time.Wednesday) {
		t.Error("周三不应为周末")
	}
}
