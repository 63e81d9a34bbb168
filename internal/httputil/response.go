package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the uniform success payload: {"status":"success","data":...},
// with "token" on auth responses and "results" on list responses.
type Envelope struct {
	Status  string `json:"status"`
	Token   string `json:"token,omitempty"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorEnvelope is the uniform failure payload: {"status":"fail|error","message":"..."}.
type ErrorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondData sends a success envelope wrapping the given data.
func RespondData(w http.ResponseWriter, data any, statusCode int) {
	RespondJSON(w, Envelope{Status: "success", Data: data}, statusCode)
}

// RespondList sends a success envelope with a result count for collection endpoints.
func RespondList(w http.ResponseWriter, results int, data any) {
	RespondJSON(w, Envelope{Status: "success", Results: &results, Data: data}, http.StatusOK)
}

// RespondToken sends a success envelope carrying a session token alongside data.
func RespondToken(w http.ResponseWriter, token string, data any, statusCode int) {
	RespondJSON(w, Envelope{Status: "success", Token: token, Data: data}, statusCode)
}

// RespondError sends an error envelope. The status string is "fail" for client
// errors and "error" for server errors, matching the numeric code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorEnvelope{Status: statusString(statusCode), Message: message}, statusCode)
}

func statusString(statusCode int) string {
	if statusCode >= 500 {
		return "error"
	}
	return "fail"
}
