package dataprocessing

import (
	"time"

	"salespulse/internal/cleaning"
	"salespulse/pkg/contracts/domain"
)

// DataSummary describes the scope of a loaded dataset before cleaning.
type DataSummary struct {
	TotalRecords  int        `json:"total_records"`
	Columns       []string   `json:"columns"`
	ParsedDates   int        `json:"parsed_dates"`
	UnparsedDates int        `json:"unparsed_dates"`
	DateStart     *time.Time `json:"date_start,omitempty"`
	DateEnd       *time.Time `json:"date_end,omitempty"`
	DateSpanDays  int        `json:"date_span_days"`
}

// Summarize reports the record count, header and order date coverage of ds.
// Dates are parsed with the same rules the cleaner uses.
func Summarize(ds *Dataset) DataSummary {
	s := DataSummary{}
	if ds == nil {
		return s
	}
	s.TotalRecords = len(ds.Table)
	s.Columns = append([]string(nil), ds.Columns...)

	var first, last time.Time
	for _, r := range ds.Table {
		d, ok := dateOf(r)
		if !ok {
			s.UnparsedDates++
			continue
		}
		s.ParsedDates++
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	if s.ParsedDates > 0 {
		s.DateStart, s.DateEnd = &first, &last
		s.DateSpanDays = int(last.Sub(first).Hours() / 24)
	}
	return s
}

func dateOf(r domain.Record) (time.Time, bool) {
	if r.RawDate == "" && r.HasDate() {
		return r.OrderDate, true
	}
	return cleaning.ParseDate(r.RawDate)
}
