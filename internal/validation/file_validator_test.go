package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateDataFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "valid csv file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "sales.csv")
				require.NoError(t, os.WriteFile(file, []byte("Order_ID\n1\n"), 0644))
				return file
			},
		},
		{
			name: "valid xlsx extension is case insensitive",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "sales.XLSX")
				require.NoError(t, os.WriteFile(file, []byte("not really a workbook"), 0644))
				return file
			},
		},
		{
			name: "non-existent file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory instead of file",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "empty.csv")
				require.NoError(t, os.WriteFile(file, nil, 0644))
				return file
			},
			wantErr:       true,
			errorContains: "is empty",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "sales.json")
				require.NoError(t, os.WriteFile(file, []byte("[]"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "unsupported file format",
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "~$sales.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("lock"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "temporary Excel file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(nil)
			err := v.ValidateDataFile(tt.setupFunc(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "nested", "out")

	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err), "write test file should be removed")
}
