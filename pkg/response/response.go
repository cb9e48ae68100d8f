// Package response writes the JSON bodies of the studio API. Successful
// responses carry the payload as-is; failures carry {"error": <message>}, and
// conflicts additionally carry the numeric status so clients can branch on it.
package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

func Error(w http.ResponseWriter, statusCode int, err string) {
	JSON(w, statusCode, errorBody{Error: err})
}

// Conflict reports a failed conditional update. The body repeats the 409
// status so loosely typed clients don't have to inspect the HTTP layer.
func Conflict(w http.ResponseWriter, err string) {
	JSON(w, http.StatusConflict, errorBody{Error: err, Status: http.StatusConflict})
}

func BadRequest(w http.ResponseWriter, err string) {
	Error(w, http.StatusBadRequest, err)
}

func Unauthorized(w http.ResponseWriter, err string) {
	Error(w, http.StatusUnauthorized, err)
}

func Forbidden(w http.ResponseWriter, err string) {
	Error(w, http.StatusForbidden, err)
}

func NotFound(w http.ResponseWriter, err string) {
	Error(w, http.StatusNotFound, err)
}

func InternalError(w http.ResponseWriter, err string) {
	Error(w, http.StatusInternalServerError, err)
}
