package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Required column names of an ingested transaction table.
const (
	ColumnOrderID      = "Order_ID"
	ColumnOrderDate    = "Order_Date"
	ColumnProduct      = "Product"
	ColumnCategory     = "Category"
	ColumnQuantity     = "Quantity"
	ColumnPrice        = "Price"
	ColumnRevenue      = "Revenue"
	ColumnRegion       = "Region"
	ColumnCustomerType = "Customer_Type"
)

// UnknownValue fills missing Region and Customer_Type cells.
const UnknownValue = "Unknown"

// RequiredColumns returns the transaction schema in canonical order.
func RequiredColumns() []string {
	return []string{
		ColumnOrderID,
		ColumnOrderDate,
		ColumnProduct,
		ColumnCategory,
		ColumnQuantity,
		ColumnPrice,
		ColumnRevenue,
		ColumnRegion,
		ColumnCustomerType,
	}
}

// nullTokens are raw cell values read as missing, matching what common
// spreadsheet and CSV tooling writes for empty cells.
var nullTokens = map[string]struct{}{
	"":      {},
	"na":    {},
	"n/a":   {},
	"#n/a":  {},
	"nan":   {},
	"-nan":  {},
	"null":  {},
	"none":  {},
	"<na>":  {},
	"nat":   {},
	"-":     {},
	"#null": {},
}

// IsNullToken reports whether raw denotes a missing cell.
func IsNullToken(raw string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Text is a nullable text cell.
type Text struct {
	Value string
	Valid bool
}

// NewText returns a present text cell.
func NewText(s string) Text {
	return Text{Value: s, Valid: true}
}

// ParseText reads a raw cell, treating null tokens as missing.
func ParseText(raw string) Text {
	if IsNullToken(raw) {
		return Text{}
	}
	return NewText(strings.TrimSpace(raw))
}

// Missing reports whether the cell has no value.
func (t Text) Missing() bool { return !t.Valid }

func (t Text) String() string {
	if !t.Valid {
		return ""
	}
	return t.Value
}

// MarshalJSON encodes a missing cell as null.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// UnmarshalJSON accepts a string, a number or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Text{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = NewText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = NewText(n.String())
	return nil
}

// Number is a nullable numeric cell. A cell can be present but hold a value
// that does not coerce to a number; Raw keeps that value verbatim until type
// normalization decides what to do with it.
type Number struct {
	Value   float64
	Raw     string
	Valid   bool
	Numeric bool
}

// NewNumber returns a present numeric cell.
func NewNumber(v float64) Number {
	return Number{Value: v, Raw: strconv.FormatFloat(v, 'f', -1, 64), Valid: true, Numeric: true}
}

// ParseNumber reads a raw cell. Null tokens give a missing cell, finite
// numbers a numeric cell and anything else a present non-numeric cell.
func ParseNumber(raw string) Number {
	if IsNullToken(raw) {
		return Number{}
	}
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return Number{Raw: s, Valid: true}
	}
	return Number{Value: v, Raw: s, Valid: true, Numeric: true}
}

// Missing reports whether the cell has no value.
func (n Number) Missing() bool { return !n.Valid }

// IsNumeric reports whether the cell holds a usable number.
func (n Number) IsNumeric() bool { return n.Valid && n.Numeric }

// Float returns the value and whether it is usable.
func (n Number) Float() (float64, bool) {
	if !n.IsNumeric() {
		return 0, false
	}
	return n.Value, true
}

func (n Number) String() string {
	switch {
	case !n.Valid:
		return ""
	case n.Numeric:
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	default:
		return n.Raw
	}
}

// MarshalJSON encodes missing as null and non-numeric cells as strings.
func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case !n.Valid:
		return []byte("null"), nil
	case n.Numeric:
		return json.Marshal(n.Value)
	default:
		return json.Marshal(n.Raw)
	}
}

// UnmarshalJSON accepts a number, a string or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*n = NewNumber(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = ParseNumber(s)
	return nil
}

// Record is one sales transaction row.
type Record struct {
	OrderID      Text      `json:"order_id"`
	RawDate      string    `json:"raw_date,omitempty"`
	OrderDate    time.Time `json:"order_date"`
	Product      Text      `json:"product"`
	Category     Text      `json:"category"`
	Quantity     Number    `json:"quantity"`
	Price        Number    `json:"price"`
	Revenue      Number    `json:"revenue"`
	Region       Text      `json:"region"`
	CustomerType Text      `json:"customer_type"`
}

// HasDate reports whether the order date has been standardized.
func (r Record) HasDate() bool { return !r.OrderDate.IsZero() }

// Table is an ordered, in-memory transaction table.
type Table []Record

// Clone returns a copy that shares no backing array with t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t) }
