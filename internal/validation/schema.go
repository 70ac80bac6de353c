package validation

import (
	"fmt"
	"strings"

	"salespulse/pkg/contracts/domain"
)

// SchemaError reports required columns absent from an ingested table.
type SchemaError struct {
	Missing  []string `json:"missing"`
	Expected []string `json:"expected"`
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("Missing required columns: %s. Expected columns: %s",
		strings.Join(e.Missing, ", "), strings.Join(e.Expected, ", "))
}

// ColumnIndex maps each required column to its position in a header row.
type ColumnIndex map[string]int

// ValidateColumns checks a header row against the transaction schema and
// returns the position of every required column. Extra columns are ignored.
func ValidateColumns(header []string) (ColumnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = normalizeHeader(name)
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	required := domain.RequiredColumns()
	index := make(ColumnIndex, len(required))
	var missing []string
	for _, col := range required {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = pos
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Expected: required}
	}
	return index, nil
}

func normalizeHeader(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
