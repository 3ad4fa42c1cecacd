package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const storeTimeout = 2 * time.Second

// captureWriter tees the response body so it can be stored for replays.
type captureWriter struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency makes mutating requests replay-safe per user. The client sends
// Ax-Request-Id and Ax-Request-At; a repeat with the same id and body gets
// the stored response, a repeat with another body gets 409. A 5xx outcome
// releases the id so the client may retry. Must run after Auth.
func Idempotency(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	store := replayStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			now := time.Now().UTC()
			stamp, err := readStamp(req.Header, now)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			claims, ok := ClaimsFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			sum := digest(body)

			key := replayKey(req.Method, c.Path(), claims.UserID, stamp.ID)
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			won, err := store.reserve(ctx, key, replayEntry{Digest: sum, SentAt: stamp.At, StoredAt: now})
			if err != nil {
				log.Error("idempotency reserve", zap.String("key", key), zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !won {
				return replay(ctx, c, store, key, sum, log)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be gone once the handler returned
			bg, done := context.WithTimeout(context.Background(), storeTimeout)
			defer done()
			status := c.Response().Status
			if status >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					log.Warn("idempotency release", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			final := replayEntry{Status: status, Response: cw.body.Bytes(), Digest: sum, SentAt: stamp.At, StoredAt: time.Now().UTC()}
			if err := store.complete(bg, key, final); err != nil {
				log.Warn("idempotency save", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

func replay(ctx context.Context, c echo.Context, store replayStore, key, sum string, log *zap.Logger) error {
	cur, err := store.lookup(ctx, key)
	switch {
	case errors.Is(err, errNoEntry):
		// released or expired between reserve and lookup
		return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
	case err != nil:
		log.Warn("idempotency lookup", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
	case cur.Digest != sum:
		return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
	case cur.Done:
		return c.Blob(cur.Status, echo.MIMEApplicationJSON, cur.Response)
	}
	return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
}
