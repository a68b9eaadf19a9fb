// Package httputil provides shared HTTP plumbing for the orbitmap server:
// JSON encoding and decoding with size limits, and a single mapping from
// structured error codes to HTTP status codes so every handler reports
// failures the same way.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/davemaier/orbitmap/pkg/errors"
)

// MaxBodyBytes caps request bodies. Snapshots of real folder trees stay far
// below this; anything larger is abuse or a client bug.
const MaxBodyBytes = 8 << 20 // 8 MiB

// ErrorResponse is the wire shape of every error the API returns.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable code alongside the human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status code via its error code and writes the
// standard error envelope. Unrecognized errors become 500s with the raw
// message suppressed behind a generic one.
func WriteError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := StatusForCode(code)

	message := errors.UserMessage(err)
	if status == http.StatusInternalServerError && code == "" {
		message = "internal server error"
		code = errors.ErrCodeInternal
	}

	WriteJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    string(code),
		Message: message,
	}})
}

// StatusForCode maps structured error codes to HTTP status codes.
func StatusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidSnapshot,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidViewport,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound,
		errors.ErrCodeMapNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a size-limited JSON body into v. Unknown fields are
// rejected so client typos surface as 400s instead of silently ignored
// options.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body")
	}
	// A second value means trailing garbage after the JSON document.
	if dec.More() {
		return errors.New(errors.ErrCodeInvalidInput, "unexpected data after request body")
	}
	return nil
}

// ContentTypeFor returns the Content-Type for a rendered artifact format.
func ContentTypeFor(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "json":
		return "application/json"
	case "dot":
		return "text/vnd.graphviz"
	default:
		return "application/octet-stream"
	}
}
