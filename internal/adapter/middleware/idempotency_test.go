package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cta-backend/internal/domain/user"
	"cta-backend/internal/infrastructure/token"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	testUserID  = uint64(7)
	testReqID   = "3F9A6A1B3D544FBE8B3A6B3E8D6B2C88"
	testReqUUID = "3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88" // canonical form of testReqID
)

// stubVerifier accepts "tok-<anything>" as user testUserID with the technician role.
type stubVerifier struct{}

func (stubVerifier) Verify(raw string) (*token.Claims, error) {
	if !strings.HasPrefix(raw, "tok-") {
		return nil, user.ErrInvalidToken
	}
	return &token.Claims{UserID: testUserID, Role: user.RoleTechnician}, nil
}

// helper: new Echo with Auth + the middleware and a simple route
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Auth(stubVerifier{}))
	e.Use(Idempotency(rdb, ttl, nil))
	e.POST("/inspections", handler)
	e.GET("/inspections", handler) // for non-mutating bypass test
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok-test")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: testReqID,
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// okCreatedHandler answers 201 so the capture path stores a response
func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/inspections", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)

	cases := map[string]func(h map[string]string){
		"missing request id": func(h map[string]string) { delete(h, HeaderRequestID) },
		"invalid request id": func(h map[string]string) { h[HeaderRequestID] = "NOT-VALID" },
		"invalid request at": func(h map[string]string) { h[HeaderRequestAt] = "not-a-time" },
		"request at skewed": func(h map[string]string) {
			h[HeaderRequestAt] = time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)
		},
	}
	for name, mutate := range cases {
		h := validHeaders()
		mutate(h)
		rec := doReq(t, e, http.MethodPost, "/inspections", mkJSONBody(t, map[string]int{"x": 1}), h)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s => want 400, got %d", name, rec.Code)
		}
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	calls := 0
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]any{"id": calls})
	})
	h := validHeaders()

	rec1 := doReq(t, e, http.MethodPost, "/inspections", mkJSONBody(t, map[string]any{"registration_plate": "DK-1"}), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// Same headers & body -> stored response, handler not called again
	rec2 := doReq(t, e, http.MethodPost, "/inspections", mkJSONBody(t, map[string]any{"registration_plate": "DK-1"}), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
}

func Test_ServerError_ReleasesKey(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	fail := true
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		if fail {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return okCreatedHandler(c)
	})
	h := validHeaders()

	if rec := doReq(t, e, http.MethodPost, "/inspections", bytes.NewReader([]byte(`{}`)), h); rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
	if mr.Exists(replayKey(http.MethodPost, "/inspections", testUserID, testReqUUID)) {
		t.Fatalf("5xx must release the idempotency key")
	}
	fail = false
	if rec := doReq(t, e, http.MethodPost, "/inspections", bytes.NewReader([]byte(`{}`)), h); rec.Code != http.StatusCreated {
		t.Fatalf("retry => want 201, got %d", rec.Code)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	body := []byte(`{"x":1}`)
	// a reservation without a final response
	key := replayKey(http.MethodPost, "/inspections", testUserID, testReqUUID)
	store := replayStore{rdb: rdb, ttl: time.Minute}
	if ok, err := store.reserve(context.Background(), key, replayEntry{Digest: digest(body)}); err != nil || !ok {
		t.Fatalf("seed reservation failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, "/inspections", bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	key := replayKey(http.MethodPost, "/inspections", testUserID, testReqUUID)
	store := replayStore{rdb: rdb, ttl: 5 * time.Minute}
	final := replayEntry{Status: http.StatusCreated, Response: []byte(`{"ok":true}`), Digest: digest([]byte(`{"x":1}`))}
	if err := store.complete(context.Background(), key, final); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, "/inspections", bytes.NewReader([]byte(`{"x":2}`)), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_SameRequestIDOtherUser_IsIndependent(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	other := replayKey(http.MethodPost, "/inspections", testUserID+1, testReqUUID)
	store := replayStore{rdb: rdb, ttl: time.Minute}
	if ok, err := store.reserve(context.Background(), other, replayEntry{Digest: digest([]byte(`{}`))}); err != nil || !ok {
		t.Fatalf("seed other user: ok=%v err=%v", ok, err)
	}

	e := setupEcho(rdb, time.Minute, okCreatedHandler)
	rec := doReq(t, e, http.MethodPost, "/inspections", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d", rec.Code)
	}
}

func Test_ReplayIgnoresRequestIDCase(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	calls := 0
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls++
		return okCreatedHandler(c)
	})
	h := validHeaders()
	doReq(t, e, http.MethodPost, "/inspections", bytes.NewReader([]byte(`{}`)), h)
	h[HeaderRequestID] = testReqUUID
	if rec := doReq(t, e, http.MethodPost, "/inspections", bytes.NewReader([]byte(`{}`)), h); rec.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	// closed address → SetNX error
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	e := setupEcho(rdb, time.Minute, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, "/inspections", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
