package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/de-tools/revenuecast/pkg/models/api"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// MsgBodyNotObject is the violation reported for unreadable request bodies.
const MsgBodyNotObject = "Request body must be a JSON object"

var ErrBodyNotObject = errors.New("request body must be a JSON object")

// JSON encodes v before writing the header, so a value that cannot be
// encoded turns into a 500 instead of an empty success.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Internal server error"}`+"\n")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to write response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, api.ErrorResponse{Error: message})
}

// Decode reads a single JSON value from the request body. Numbers are kept
// as json.Number so integer inputs survive untouched.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBodyNotObject, err)
	}
	return nil
}

// DecodeObject decodes the body into a generic JSON object.
func DecodeObject(r *http.Request) (map[string]any, error) {
	var payload map[string]any
	if err := Decode(r, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrBodyNotObject
	}
	return payload, nil
}
