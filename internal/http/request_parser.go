package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"finledger/internal/middleware/auth"
)

// maxBodyBytes caps request bodies; a month document stays far below it.
const maxBodyBytes = 1 << 20

// ErrMalformedBody is returned for bodies that are not valid JSON.
var ErrMalformedBody = errors.New("malformed request body")

// decodeJSON reads exactly one JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrMalformedBody)
		}
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON value", ErrMalformedBody)
	}
	return nil
}

// userOf returns the authenticated user key. The auth middleware guarantees
// it on every /api route.
func userOf(r *http.Request) string {
	user, _ := auth.UserFrom(r.Context())
	return user
}

// queryBool reads a boolean query flag; "1", "true" and "yes" are true.
func queryBool(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
