package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	// Explorer events are tiny; 64KB is generous (requires w for a proper 413 response)
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// ParseOptionalJSON is ParseJSON for endpoints whose body may be omitted
func ParseOptionalJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	err := ParseJSON(w, r, dest)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
