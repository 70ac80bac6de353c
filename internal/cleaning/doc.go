// Package cleaning repairs raw sales transaction tables.
//
// The pipeline is a left-to-right composition of six stages, each a pure
// function from a table to a new table plus audit entries:
//
//  1. date standardization (unparseable dates are dropped)
//  2. missing values (identity, quantity and price gaps are dropped,
//     revenue is recomputed, region and customer type default to "Unknown")
//  3. duplicate removal (first occurrence of each Order_ID wins)
//  4. revenue reconciliation (deviations above 1% are recomputed)
//  5. type normalization (non-numeric values become missing)
//  6. outlier flagging (logged only, never removed)
//
// Type normalization can reintroduce missing quantities, prices or revenues
// after stage 2 has run. Those rows are kept as they are; a second Clean
// over the output drops or repairs them.
package cleaning
