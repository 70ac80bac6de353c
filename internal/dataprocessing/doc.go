// Package dataprocessing loads sales transaction tables from CSV and Excel
// files.
//
// The header is checked for the required columns before any row is read, so
// a file missing Revenue or Order_Date fails fast with a
// *validation.SchemaError. Cells are kept as raw text and numbers; dates stay
// unparsed until cleaning.
//
// Usage:
//
//	loader := dataprocessing.NewLoader(logger)
//	ds, err := loader.LoadFile(ctx, "sales.xlsx")
//	if err != nil {
//	    return err
//	}
//	summary := dataprocessing.Summarize(ds)
package dataprocessing
