package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func TestValidateColumns(t *testing.T) {
	full := domain.RequiredColumns()

	tests := []struct {
		name        string
		header      []string
		wantMissing []string
		checkIndex  func(t *testing.T, idx ColumnIndex)
	}{
		{
			name:   "exact schema",
			header: full,
			checkIndex: func(t *testing.T, idx ColumnIndex) {
				assert.Equal(t, 0, idx[domain.ColumnOrderID])
				assert.Equal(t, 8, idx[domain.ColumnCustomerType])
			},
		},
		{
			name:   "reordered with extra columns, BOM and padding",
			header: []string{"\ufeffNotes", " Revenue ", "Order_ID", "Order_Date", "Product", "Category", "Quantity", "Price", "Region", "Customer_Type", "Discount"},
			checkIndex: func(t *testing.T, idx ColumnIndex) {
				assert.Equal(t, 1, idx[domain.ColumnRevenue])
				assert.Equal(t, 2, idx[domain.ColumnOrderID])
				assert.Len(t, idx, len(full))
			},
		},
		{
			name:        "missing two columns reported in schema order",
			header:      []string{"Order_ID", "Order_Date", "Product", "Category", "Price", "Revenue", "Region"},
			wantMissing: []string{"Quantity", "Customer_Type"},
		},
		{
			name:        "names are case sensitive",
			header:      []string{"order_id", "Order_Date", "Product", "Category", "Quantity", "Price", "Revenue", "Region", "Customer_Type"},
			wantMissing: []string{"Order_ID"},
		},
		{
			name:        "empty header",
			header:      nil,
			wantMissing: full,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := ValidateColumns(tt.header)
			if tt.wantMissing != nil {
				var schemaErr *SchemaError
				require.True(t, errors.As(err, &schemaErr))
				assert.Equal(t, tt.wantMissing, schemaErr.Missing)
				assert.Equal(t, full, schemaErr.Expected)
				assert.Contains(t, err.Error(), "Missing required columns")
				assert.Nil(t, idx)
				return
			}
			require.NoError(t, err)
			tt.checkIndex(t, idx)
		})
	}
}
