package response

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error  string `json:"error"`
	Fields error  `json:"fields,omitempty"`
}

func RenderUnauthorized(rw http.ResponseWriter) {
	RenderError(rw, "invalid api token", http.StatusUnauthorized)
}

func RenderInternalError(rw http.ResponseWriter) {
	RenderError(rw, "internal error", http.StatusInternalServerError)
}

func RenderNotFound(rw http.ResponseWriter, msg string) {
	RenderError(rw, msg, http.StatusNotFound)
}

// RenderValidationError reports per-field problems. err is expected to be
// validation.Errors, which marshals as a field to message map.
func RenderValidationError(rw http.ResponseWriter, err error) {
	Render(rw, errorResponse{Error: "invalid request data", Fields: err}, http.StatusBadRequest)
}

func RenderError(rw http.ResponseWriter, msg string, status int) {
	Render(rw, errorResponse{Error: msg}, status)
}

func Render(rw http.ResponseWriter, res any, status int) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Cache-Control", "no-store")

	content, err := json.Marshal(res)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(status)
	rw.Write(content)
}
