package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"

	// accepted distance between the client stamp and the server clock
	maxClockSkew = 10 * time.Minute
)

// requestStamp is the client-chosen identity of a mutating request.
type requestStamp struct {
	ID string // canonical lowercase uuid
	At time.Time
}

// readStamp validates the Ax-Request-Id / Ax-Request-At pair against now.
func readStamp(h http.Header, now time.Time) (requestStamp, error) {
	raw := strings.TrimSpace(h.Get(HeaderRequestID))
	if raw == "" {
		return requestStamp{}, errors.New("missing " + HeaderRequestID)
	}
	id, ok := parseRequestID(raw)
	if !ok {
		return requestStamp{}, errors.New("invalid " + HeaderRequestID + " format")
	}
	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return requestStamp{}, err
	}
	if d := now.Sub(at); d > maxClockSkew || d < -maxClockSkew {
		return requestStamp{}, errors.New(HeaderRequestAt + " too skewed")
	}
	return requestStamp{ID: id, At: at}, nil
}

// parseRequestID accepts an RFC 4122 uuid, dashed or as 32 hex digits, in
// any case, and returns its canonical form.
func parseRequestID(s string) (string, bool) {
	if len(s) != 32 && len(s) != 36 {
		return "", false
	}
	u, err := uuid.Parse(s)
	if err != nil || u.Variant() != uuid.RFC4122 || u.Version() < 1 || u.Version() > 8 {
		return "", false
	}
	return u.String(), true
}

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC 3339 with
// an explicit zone. Zone-less timestamps are refused.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}
