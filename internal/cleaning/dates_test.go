package cleaning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salespulse/pkg/contracts/domain"
)

func TestParseDate(t *testing.T) {
	jan5 := time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		raw    string
		want   time.Time
		wantOK bool
	}{
		{"iso date", "2023-01-05", jan5, true},
		{"iso without padding", "2023-1-5", jan5, true},
		{"iso datetime", "2023-01-05 14:30:00", jan5, true},
		{"rfc3339", "2023-01-05T14:30:00Z", jan5, true},
		{"rfc3339 with offset keeps local date", "2023-01-05T23:30:00-05:00", jan5, true},
		{"slashes year first", "2023/01/05", jan5, true},
		{"slashes month first", "01/05/2023", jan5, true},
		{"slashes day first when month first impossible", "13/05/2023", time.Date(2023, time.May, 13, 0, 0, 0, 0, time.UTC), true},
		{"dotted day first", "05.01.2023", jan5, true},
		{"day month name", "5-Jan-2023", jan5, true},
		{"month name first", "Jan 5, 2023", jan5, true},
		{"long month name", "January 5, 2023", jan5, true},
		{"compact", "20230105", jan5, true},
		{"excel serial", "44931", jan5, true},
		{"padded", "  2023-01-05  ", jan5, true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
		{"impossible day", "2023-02-30", time.Time{}, false},
		{"small number", "12", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			}
		})
	}
}

func TestStandardizeDates_KeepsPreparsedDate(t *testing.T) {
	r := row("1", "", "1", "1", "1")
	r.OrderDate = time.Date(2024, time.June, 3, 15, 4, 5, 0, time.UTC)

	out, log := standardizeDates(domain.Table{r})

	assert.Empty(t, log)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "2024-06-03", out[0].RawDate)
		assert.Equal(t, time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), out[0].OrderDate)
	}
}
