package cleaning

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func spikeTable() domain.Table {
	t := make(domain.Table, 0, 21)
	for i := 0; i < 20; i++ {
		t = append(t, row(strconv.Itoa(i), "2023-01-05", "1", "100", "100"))
	}
	return append(t, row("spike", "2023-01-06", "100", "100", "10000"))
}

func TestFindOutliers(t *testing.T) {
	reports := FindOutliers(spikeTable(), DefaultOutlierSigma)
	require.Len(t, reports, 3)

	byColumn := map[string]OutlierReport{}
	for _, r := range reports {
		byColumn[r.Column] = r
	}

	assert.Equal(t, []int{20}, byColumn[domain.ColumnQuantity].Rows)
	assert.Equal(t, []int{20}, byColumn[domain.ColumnRevenue].Rows)
	// constant column has zero deviation
	assert.Empty(t, byColumn[domain.ColumnPrice].Rows)
	assert.Zero(t, byColumn[domain.ColumnPrice].StdDev)
	assert.InDelta(t, 120.0/21.0, byColumn[domain.ColumnQuantity].Mean, 1e-9)
}

func TestFindOutliers_IgnoresMissingAndSingleValues(t *testing.T) {
	table := domain.Table{
		row("1", "2023-01-05", "1", "", ""),
	}

	for _, rep := range FindOutliers(table, DefaultOutlierSigma) {
		assert.Empty(t, rep.Rows, rep.Column)
	}
}

func TestClean_FlagsButKeepsOutliers(t *testing.T) {
	cleaned, log := Clean(spikeTable())

	assert.Len(t, cleaned, 21)
	assert.Contains(t, log, "Found 1 potential outliers in Quantity (beyond 3 standard deviations)")
	assert.Contains(t, log, "Found 1 potential outliers in Revenue (beyond 3 standard deviations)")
	assert.NotContains(t, log, "Found 1 potential outliers in Price (beyond 3 standard deviations)")
	assert.Equal(t, "Cleaning complete: 21 records retained, 0 removed", log[len(log)-1])
}

func TestCleaner_RunReturnsOutlierReports(t *testing.T) {
	res := NewCleaner(DefaultOptions(), nil).Run(context.Background(), spikeTable())

	assert.Len(t, res.Table, 21)
	assert.Equal(t, FindOutliers(res.Table, DefaultOutlierSigma), res.Outliers)
	require.Len(t, res.Outliers, 3)
	assert.Equal(t, []int{20}, res.Outliers[0].Rows)
	assert.Equal(t, "Cleaning complete: 21 records retained, 0 removed", res.Log[len(res.Log)-1])
}
