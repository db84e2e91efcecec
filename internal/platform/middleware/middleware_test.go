package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dently/clinic/internal/platform/auth"
)

type mockRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (m *mockRecorder) RecordAccess(entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return m.err
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *mockRecorder) last() AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[len(m.entries)-1]
}

func newTestContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequestIDGenerated(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/v1/patients")
	if err := RequestID()(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rid, _ := c.Get("request_id").(string)
	if rid == "" {
		t.Fatal("expected request_id to be set")
	}
	if _, err := uuid.Parse(rid); err != nil {
		t.Errorf("request_id %q is not a UUID: %v", rid, err)
	}
	if got := rec.Header().Get(echo.HeaderXRequestID); got != rid {
		t.Errorf("response header = %q, want %q", got, rid)
	}
}

func TestRequestIDHonorsIncomingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set(echo.HeaderXRequestID, "incoming-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequestID()(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rid, _ := c.Get("request_id").(string); rid != "incoming-id" {
		t.Errorf("request_id = %q, want incoming-id", rid)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/v1/patients")
	handler := Recovery(zerolog.Nop())(func(echo.Context) error {
		panic("boom")
	})

	err := handler(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 HTTPError, got %v", err)
	}
}

func TestLoggerPassesThroughError(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/v1/patients")
	want := errors.New("handler failed")
	err := Logger(zerolog.Nop())(func(echo.Context) error { return want })(c)
	if !errors.Is(err, want) {
		t.Errorf("expected handler error to propagate, got %v", err)
	}
}

func TestAuditRecordsAPIAccess(t *testing.T) {
	rec := &mockRecorder{}
	c, _ := newTestContext(http.MethodDelete, "/api/v1/shifts/abc")

	userID := uuid.New()
	ctx := auth.WithSession(c.Request().Context(), auth.Session{
		UserID:         userID,
		OrganizationID: "org_demo",
		Role:           auth.RoleManager,
	})
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set("request_id", "rid-1")

	if err := Audit(zerolog.Nop(), rec)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.count() != 1 {
		t.Fatalf("expected 1 audit entry, got %d", rec.count())
	}
	entry := rec.last()
	if entry.UserID != userID.String() {
		t.Errorf("UserID = %q, want %q", entry.UserID, userID)
	}
	if entry.ResourceType != "shifts" {
		t.Errorf("ResourceType = %q, want shifts", entry.ResourceType)
	}
	if entry.Action != "delete" {
		t.Errorf("Action = %q, want delete", entry.Action)
	}
	if entry.RequestID != "rid-1" {
		t.Errorf("RequestID = %q, want rid-1", entry.RequestID)
	}
}

func TestAuditSkipsNonAPIPaths(t *testing.T) {
	rec := &mockRecorder{}
	c, _ := newTestContext(http.MethodGet, "/health")
	if err := Audit(zerolog.Nop(), rec)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.count() != 0 {
		t.Errorf("expected no audit entries for /health, got %d", rec.count())
	}
}

func TestAuditRecorderErrorDoesNotFailRequest(t *testing.T) {
	rec := &mockRecorder{err: errors.New("store down")}
	c, _ := newTestContext(http.MethodGet, "/api/v1/patients")
	if err := Audit(zerolog.Nop(), rec)(okHandler)(c); err != nil {
		t.Errorf("audit recorder failure should not fail the request: %v", err)
	}
}

func TestHTTPMethodToAction(t *testing.T) {
	tests := map[string]string{
		http.MethodGet:    "read",
		http.MethodPost:   "create",
		http.MethodPut:    "update",
		http.MethodPatch:  "update",
		http.MethodDelete: "delete",
	}
	for method, want := range tests {
		if got := httpMethodToAction(method); got != want {
			t.Errorf("httpMethodToAction(%s) = %q, want %q", method, got, want)
		}
	}
}
