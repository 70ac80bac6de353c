// Package shared holds code used across packages that belongs to no single
// layer.
//
// The testutil subpackage provides a capturing slog handler for asserting
// on log output and sales fixtures (CSV builders, records, monthly series)
// for tests.
package shared
