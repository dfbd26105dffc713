package util

import (
	"encoding/json"
	"net/http"
)

// Every response uses the same envelope: successes carry data (lists
// add meta), failures carry a single message and no stack detail.

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    any  `json:"meta,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func Success(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data})
}

func SuccessList(w http.ResponseWriter, data, meta any) {
	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data, Meta: meta})
}

func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Success: false, Message: message})
}
