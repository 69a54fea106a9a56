package typeroute

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// detailBody is the wire shape for every error response: {"detail": ...}.
// Validation failures carry a list of field errors, everything else a
// string message.
type detailBody struct {
	Detail any `json:"detail"`
}

// writeValidationErrors is the sole translation point between binder
// failures and the wire format: status 422, one detail entry per field
// error, discovery order preserved.
func writeValidationErrors(w http.ResponseWriter, verrs ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	//nolint:errcheck,errchkjson // best-effort after WriteHeader
	json.NewEncoder(w).Encode(detailBody{Detail: verrs})
}

// writeError writes a handler or framework error. Errors carrying a status
// below 500 expose their message; anything else gets a generic body so
// internal detail never reaches the client.
func writeError(w http.ResponseWriter, err error) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		writeValidationErrors(w, verrs)
		return
	}

	status := ErrorStatus(err)
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson // best-effort after WriteHeader
	json.NewEncoder(w).Encode(detailBody{Detail: msg})
}

// encodeResponse writes a handler's response value as JSON. The value is
// encoded into a buffer first so a serialization failure can still become
// a clean 500 with a generic message; the failure detail is only logged.
func encodeResponse(w http.ResponseWriter, v any, status int, logger *slog.Logger) {
	if sc, ok := v.(StatusCoder); ok {
		status = sc.StatusCode()
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("response encoding failed", "error", err.Error())
		writeError(w, Error(http.StatusInternalServerError, ""))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort after WriteHeader
	w.Write(buf.Bytes())
}
