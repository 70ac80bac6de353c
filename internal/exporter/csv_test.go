package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	return NewCSVWriter(dir, nil), dir
}

// readCSV parses a written file, stripping the BOM when present.
func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, utf8BOM)
	rows, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		wantBOM  bool
		wantRows [][]string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"Month", "Revenue"},
				Records: [][]string{{"2024-01", "100.00"}, {"2024-02", "250.50"}},
			},
			wantRows: [][]string{{"Month", "Revenue"}, {"2024-01", "100.00"}, {"2024-02", "250.50"}},
		},
		{
			name: "with BOM prefix",
			options: WriteOptions{
				Headers:   []string{"Product"},
				Records:   [][]string{{"Laptop"}},
				BOMPrefix: true,
			},
			wantBOM:  true,
			wantRows: [][]string{{"Product"}, {"Laptop"}},
		},
		{
			name: "without headers",
			options: WriteOptions{
				Records: [][]string{{"a", "b"}, {"c", "d"}},
			},
			wantRows: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "empty records",
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
			},
			wantRows: [][]string{{"Col1", "Col2"}},
		},
		{
			name: "quotes and separators",
			options: WriteOptions{
				Headers: []string{"Product", "Note"},
				Records: [][]string{{"Desk, oak", `the "big" one`}, {"Lamp", "line1\nline2"}},
			},
			wantRows: [][]string{{"Product", "Note"}, {"Desk, oak", `the "big" one`}, {"Lamp", "line1\nline2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer, dir := newTestWriter(t)

			require.NoError(t, writer.WriteCSV("out.csv", tt.options))

			path := filepath.Join(dir, "out.csv")
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(content, utf8BOM))
			assert.Equal(t, tt.wantRows, readCSV(t, path))
		})
	}
}

func TestCSVWriter_WriteCSVAppend(t *testing.T) {
	writer, dir := newTestWriter(t)

	require.NoError(t, writer.WriteSimpleCSV("log.csv", []string{"Month", "Revenue"}, [][]string{{"2024-01", "1.00"}}))
	require.NoError(t, writer.WriteCSV("log.csv", WriteOptions{
		Headers: []string{"Month", "Revenue"},
		Records: [][]string{{"2024-02", "2.00"}},
		Append:  true,
	}))

	assert.Equal(t, [][]string{
		{"Month", "Revenue"},
		{"2024-01", "1.00"},
		{"2024-02", "2.00"},
	}, readCSV(t, filepath.Join(dir, "log.csv")))
}

func TestCSVWriter_CreatesDirectories(t *testing.T) {
	writer, dir := newTestWriter(t)

	require.NoError(t, writer.WriteSimpleCSV(filepath.Join("run", "nested", "x.csv"), []string{"A"}, nil))

	assert.FileExists(t, filepath.Join(dir, "run", "nested", "x.csv"))
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "abs.csv")

	tests := []struct {
		name    string
		baseDir string
		path    string
		want    string
	}{
		{name: "relative joins base", baseDir: "out", path: "a.csv", want: filepath.Join("out", "a.csv")},
		{name: "absolute kept", baseDir: "out", path: abs, want: abs},
		{name: "no base", baseDir: "", path: "a.csv", want: "a.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewCSVWriter(tt.baseDir, nil)
			assert.Equal(t, tt.want, w.resolvePath(tt.path))
		})
	}
}

func TestCSVWriter_ErrorScenarios(t *testing.T) {
	writer, dir := newTestWriter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "taken"), 0755))

	err := writer.WriteCSV("taken", WriteOptions{Headers: []string{"A"}})
	assert.Error(t, err)

	_, err = writer.CreateStreamWriter("taken", []string{"A"})
	assert.Error(t, err)
}

func TestStreamWriter(t *testing.T) {
	writer, dir := newTestWriter(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"Order_ID", "Revenue"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stream.csv"), stream.Path())

	for i := 0; i < 1000; i++ {
		require.NoError(t, stream.WriteRecord([]string{"A" + strings.Repeat("x", i%5), "1.00"}))
	}
	require.NoError(t, stream.Close())

	content, err := os.ReadFile(stream.Path())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, utf8BOM))

	rows := readCSV(t, stream.Path())
	assert.Len(t, rows, 1001)
	assert.Equal(t, []string{"Order_ID", "Revenue"}, rows[0])
}
