package testutil

import (
	"fmt"
	"strings"
	"time"

	"salespulse/pkg/contracts/domain"
)

// SalesHeader is the required header line of a transaction CSV.
const SalesHeader = "Order_ID,Order_Date,Product,Category,Quantity,Price,Revenue,Region,Customer_Type\n"

// SalesCSV builds a transaction CSV with two orders per month for the given
// number of months starting 2023-01-10, then one duplicate Order_ID and one
// row with an unparseable date. Cleaning it removes exactly those two rows.
func SalesCSV(months int) string {
	var b strings.Builder
	b.WriteString(SalesHeader)
	start := time.Date(2023, time.January, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		day := start.AddDate(0, i, 0).Format("2006-01-02")
		qty := 10 + i
		fmt.Fprintf(&b, "A%d,%s,Laptop,Electronics,%d,100,%d,North,Retail\n", i, day, qty, qty*100)
		fmt.Fprintf(&b, "B%d,%s,Desk,Furniture,1,50,50,,Wholesale\n", i, day)
	}
	b.WriteString("A0,2023-01-10,Laptop,Electronics,1,100,100,North,Retail\n")
	b.WriteString("Z1,not a date,Pen,Office,1,1,1,South,Retail\n")
	return b.String()
}

// Sale builds a clean, dated record. date is YYYY-MM-DD.
func Sale(id, date, product, category string, qty, price float64, region, customer string) domain.Record {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(fmt.Sprintf("testutil.Sale: %v", err))
	}
	return domain.Record{
		OrderID:      domain.NewText(id),
		RawDate:      date,
		OrderDate:    d,
		Product:      domain.NewText(product),
		Category:     domain.NewText(category),
		Quantity:     domain.NewNumber(qty),
		Price:        domain.NewNumber(price),
		Revenue:      domain.NewNumber(qty * price),
		Region:       domain.NewText(region),
		CustomerType: domain.NewText(customer),
	}
}

// MonthlySeries builds a consecutive monthly series starting at start.
func MonthlySeries(start domain.Month, values ...float64) domain.Series {
	s := make(domain.Series, len(values))
	m := start
	for i, v := range values {
		s[i] = domain.Point{Month: m, Value: v}
		m = m.Next()
	}
	return s
}
