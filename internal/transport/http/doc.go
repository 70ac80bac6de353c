// Package http implements the JSON handlers of the salespulse web service.
//
// Handlers stay on the HTTP side of the line: they parse the request,
// call into operations or forecasting, and render the result. Every error
// goes through the shared ErrorHandler so clients always see the same
// envelope:
//
//	{"success": false, "error": {"status_code": 422, "error_code": "INSUFFICIENT_DATA", ...}, "trace_id": "..."}
//
// Successful responses use {"success": true, "data": ...}.
//
// Routes:
//
//	POST /api/analyze           multipart "file", query method, horizon, window, export
//	POST /api/forecast          JSON series, method, horizon, window
//	POST /api/forecast/compare  JSON series, horizon, methods
//	GET  /api/health
//	GET  /metrics
package http
