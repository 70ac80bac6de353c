package cleaning

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

// row builds a record from raw cell text; empty strings are missing cells.
func row(id, date, qty, price, rev string) domain.Record {
	return domain.Record{
		OrderID:      domain.ParseText(id),
		RawDate:      date,
		Product:      domain.NewText("Widget"),
		Category:     domain.NewText("Tools"),
		Quantity:     domain.ParseNumber(qty),
		Price:        domain.ParseNumber(price),
		Revenue:      domain.ParseNumber(rev),
		Region:       domain.NewText("North"),
		CustomerType: domain.NewText("Retail"),
	}
}

func ids(t domain.Table) []string {
	out := make([]string, len(t))
	for i, r := range t {
		out[i] = r.OrderID.Value
	}
	return out
}

func TestClean_DuplicateAndMissingQuantity(t *testing.T) {
	raw := domain.Table{
		row("1", "2023-01-05", "2", "10", "20"),
		row("1", "2023-01-05", "2", "10", "20"),
		row("2", "2023-01-05", "", "10", "20"),
	}

	cleaned, log := Clean(raw)

	require.Len(t, cleaned, 1)
	assert.Equal(t, "1", cleaned[0].OrderID.Value)
	assert.Contains(t, log, "Removed 1 duplicate orders")
	assert.Contains(t, log, "Removed 1 orders with missing quantity")
	assert.Equal(t, "Cleaning complete: 1 records retained, 2 removed", log[len(log)-1])
}

func TestClean_CorrectsRevenueMismatch(t *testing.T) {
	cleaned, log := Clean(domain.Table{row("1", "2023-01-05", "5", "10", "100")})

	require.Len(t, cleaned, 1)
	assert.Equal(t, 50.0, cleaned[0].Revenue.Value)
	assert.Contains(t, log, "Found 1 orders with incorrect revenue calculations, recalculated from Quantity x Price")
}

func TestClean_AuditLogInStageOrder(t *testing.T) {
	noRegion := row("8", "2023-01-11", "2", "10", "20")
	noRegion.Region = domain.Text{}

	raw := domain.Table{
		row("1", "2023-01-05", "2", "10", "20"),
		row("2", "garbage", "1", "5", "5"),
		row("", "2023-01-06", "1", "5", "5"),
		row("4", "2023-01-07", "1", "", "5"),
		row("5", "2023-01-08", "3", "10", ""),
		row("1", "2023-01-09", "9", "9", "81"),
		row("7", "2023-01-10", "5", "10", "100"),
		noRegion,
	}

	cleaned, log := Clean(raw)

	assert.Equal(t, []string{
		"Starting data cleaning with 8 records",
		"Found 1 invalid dates, removed 1 orders",
		"Removed 1 orders with missing critical fields (ID/Product/Category)",
		"Removed 1 orders with missing price",
		"Recalculated 1 missing revenue values from Quantity x Price",
		"Filled 1 missing regions with 'Unknown'",
		"Removed 1 duplicate orders",
		"Found 1 orders with incorrect revenue calculations, recalculated from Quantity x Price",
		"Cleaning complete: 4 records retained, 4 removed",
	}, log)

	assert.Equal(t, []string{"1", "5", "7", "8"}, ids(cleaned))
	assert.Equal(t, 30.0, cleaned[1].Revenue.Value)
	assert.Equal(t, 50.0, cleaned[2].Revenue.Value)
	assert.Equal(t, domain.UnknownValue, cleaned[3].Region.Value)
	// the first occurrence of a duplicated ID survives
	assert.Equal(t, 2.0, cleaned[0].Quantity.Value)
}

func TestClean_Invariants(t *testing.T) {
	raw := domain.Table{
		row("A1", "2024-01-03", "2", "19.99", "39.98"),
		row("A2", "01/15/2024", "1", "250", "260"),
		row("A3", "2024/02/01", "4", "12.5", "50.2"),
		row("A3", "2024-02-02", "1", "1", "1"),
		row("A4", "2024-02-10", "0", "15", "7"),
		row("A5", "Feb 20, 2024", "3", "8", ""),
		row("A6", "45352", "10", "3", "30"),
		row(" A7 ", "2024-03-05T10:00:00Z", "6", "2.5", "15"),
	}

	cleaned, log := Clean(raw)
	require.NotEmpty(t, cleaned)

	seen := map[string]bool{}
	for _, r := range cleaned {
		require.False(t, r.OrderID.Missing())
		require.False(t, r.Product.Missing())
		require.False(t, r.Category.Missing())
		assert.False(t, seen[r.OrderID.Value], "duplicate order id %s", r.OrderID.Value)
		seen[r.OrderID.Value] = true

		q, okQ := r.Quantity.Float()
		p, okP := r.Price.Float()
		rev, okR := r.Revenue.Float()
		require.True(t, okQ && okP && okR)

		expected := q * p
		if expected == 0 {
			assert.Zero(t, rev)
		} else {
			assert.LessOrEqual(t, math.Abs(rev-expected)/expected, 0.01)
		}
		assert.False(t, r.OrderDate.IsZero())
		assert.Equal(t, time.UTC, r.OrderDate.Location())
	}

	assert.True(t, seen["A7"], "identifiers are trimmed")
	assert.Equal(t, "Cleaning complete: 7 records retained, 1 removed", log[len(log)-1])
}

func TestClean_Idempotent(t *testing.T) {
	raw := domain.Table{
		row("1", "2023-01-05", "2", "10", "20.1"),
		row("2", "03/04/2023", "1", "99", ""),
		row("2", "2023-03-05", "1", "99", "99"),
		row("3", "bad", "1", "1", "1"),
		row("4", "2023-05-01", "3", "7", "50"),
		row("5", "2023-05-09", "0", "7", "3"),
	}

	once, _ := Clean(raw)
	twice, log := Clean(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, "Starting data cleaning with 4 records", log[0])
	assert.Equal(t, "Cleaning complete: 4 records retained, 0 removed", log[len(log)-1])
}

// Type normalization can turn a present but non-numeric value into a
// missing one after the missing-value stage has already run. Those rows
// survive the first pass with a gap and are only dropped by a second pass.
func TestClean_LateNullsSurviveFirstPass(t *testing.T) {
	raw := domain.Table{
		row("1", "2023-01-05", "2", "10", "20"),
		row("2", "2023-01-06", "abc", "10", "20"),
		row("3", "2023-01-07", "1", "10", "ten"),
	}

	once, log := Clean(raw)

	require.Equal(t, []string{"1", "2", "3"}, ids(once))
	assert.True(t, once[1].Quantity.Missing())
	assert.True(t, once[2].Revenue.Missing())
	assert.Contains(t, log, "Converted 1 non-numeric Quantity values to missing")
	assert.Contains(t, log, "Converted 1 non-numeric Revenue values to missing")

	twice, log2 := Clean(once)

	assert.Equal(t, []string{"1", "3"}, ids(twice))
	assert.Equal(t, 10.0, twice[1].Revenue.Value)
	assert.Contains(t, log2, "Removed 1 orders with missing quantity")
	assert.Contains(t, log2, "Recalculated 1 missing revenue values from Quantity x Price")
}

func TestClean_DoesNotModifyInput(t *testing.T) {
	raw := domain.Table{
		row("1", "01/05/2023", "5", "10", "100"),
		row("1", "2023-01-05", "2", "10", "20"),
		row("2", "2023-01-06", " 3 ", "10", ""),
	}
	snapshot := raw.Clone()

	_, _ = Clean(raw)

	assert.Equal(t, snapshot, raw)
}

func TestClean_LogMonotoneAndCountsConsistent(t *testing.T) {
	raw := domain.Table{
		row("1", "2023-01-05", "2", "10", "20"),
		row("2", "", "2", "10", "20"),
		row("3", "2023-01-05", "2", "", "20"),
		row("3", "2023-01-05", "2", "10", "20"),
	}

	c := NewCleaner(DefaultOptions(), nil)
	table := raw.Clone()
	total := 1
	for _, stage := range c.Stages() {
		next, entries := stage.Apply(table)
		assert.LessOrEqual(t, len(next), len(table), "stage %s must not add rows", stage.Name)
		table = next
		total += len(entries)
	}

	cleaned, log := c.Clean(context.Background(), raw)
	assert.Len(t, log, total+1)
	assert.Equal(t, table, cleaned)
	assert.Equal(t, "Cleaning complete: "+strconv.Itoa(len(cleaned))+" records retained, "+
		strconv.Itoa(len(raw)-len(cleaned))+" removed", log[len(log)-1])
}

func TestClean_LogsSummaryWithLogger(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	c := NewCleaner(Options{}, logger)

	_, _ = c.Clean(context.Background(), domain.Table{row("1", "2023-01-05", "2", "10", "20")})

	assert.True(t, handler.ContainsMessage("data cleaning complete"))
	assert.True(t, handler.ContainsAttr("retained_rows", int64(1)))
}

func TestRevenueMismatch(t *testing.T) {
	tests := []struct {
		name     string
		revenue  float64
		expected float64
		want     bool
	}{
		{"exact", 50, 50, false},
		{"within one percent", 50.4, 50, false},
		{"exactly one percent", 50.5, 50, false},
		{"above one percent", 50.6, 50, true},
		{"below expected", 40, 50, true},
		{"zero expected zero revenue", 0, 0, false},
		{"zero expected nonzero revenue", 7, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RevenueMismatch(tt.revenue, tt.expected, DefaultRevenueTolerancePct))
		})
	}
}

func TestReconcileRevenue_ZeroExpected(t *testing.T) {
	cleaned, log := Clean(domain.Table{
		row("1", "2023-01-05", "0", "15", "7"),
		row("2", "2023-01-05", "0", "15", "0"),
	})

	require.Len(t, cleaned, 2)
	assert.Zero(t, cleaned[0].Revenue.Value)
	assert.Zero(t, cleaned[1].Revenue.Value)
	assert.Contains(t, log, "Found 1 orders with incorrect revenue calculations, recalculated from Quantity x Price")
}
