package http

import (
	"net/http"

	"github.com/go-chi/render"

	"salespulse/internal/infrastructure"
)

// Response wraps successful payloads.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	TraceID string      `json:"trace_id,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, Response{
		Success: true,
		Data:    data,
		TraceID: infrastructure.GetTraceID(r.Context()),
	})
}
