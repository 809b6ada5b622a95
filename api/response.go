package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"moddingway/logging"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// Page is the data of a paginated listing.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func responseTime(start time.Time) string {
	return fmt.Sprintf("%dms", time.Since(start).Milliseconds())
}

func respondSuccess(w http.ResponseWriter, start time.Time, code int, message string, data any) {
	writeJSON(w, code, Response{
		Status:       statusOK,
		Message:      message,
		ResponseTime: responseTime(start),
		Data:         data,
	})
}

func respondError(w http.ResponseWriter, start time.Time, code int, message string) {
	writeJSON(w, code, Response{
		Status:       statusError,
		Message:      message,
		ResponseTime: responseTime(start),
	})
}

func writeJSON(w http.ResponseWriter, code int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}
