package cleaning

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order. Slash dates are read month-first; the
// day-first layouts only match when the month-first reading is impossible.
var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/1/2",
	"2006/1/2 15:04:05",
	"2006.1.2",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06",
	"2/1/2006",
	"2/1/2006 15:04:05",
	"1-2-2006",
	"2.1.2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"Mon, 2 Jan 2006",
	"Monday, January 2, 2006",
}

// Excel serial day numbers accepted as dates (1954-10-03 to 2119-01-10).
const (
	minExcelSerial = 20000
	maxExcelSerial = 80000
)

// ParseDate parses an order date in any supported format and returns the
// calendar date at midnight UTC.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if isDigits(s) && len(s) == 8 {
		if t, err := time.Parse("20060102", s); err == nil {
			return calendarDate(t), true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minExcelSerial || serial > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return calendarDate(t), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), true
		}
	}
	return time.Time{}, false
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
