package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestHasManagerPermissions(t *testing.T) {
	if !HasManagerPermissions(RoleOrganizationOwner) {
		t.Error("expected owner to have manager permissions")
	}
	if !HasManagerPermissions(RoleManager) {
		t.Error("expected manager to have manager permissions")
	}
	if HasManagerPermissions(RolePractitioner) {
		t.Error("expected practitioner to lack manager permissions")
	}
	if HasManagerPermissions(RoleReceptionist) {
		t.Error("expected receptionist to lack manager permissions")
	}
	if HasManagerPermissions("") {
		t.Error("expected empty role to lack manager permissions")
	}
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, sess *Session) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if sess != nil {
		req = req.WithContext(WithSession(req.Context(), *sess))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRequireRole_Allows(t *testing.T) {
	sess := &Session{UserID: uuid.New(), Role: RoleManager}
	rec := doRequest(t, RequireRole(RoleManager), sess)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_OwnerPassesAnyCheck(t *testing.T) {
	sess := &Session{UserID: uuid.New(), Role: RoleOrganizationOwner}
	rec := doRequest(t, RequireRole(RoleReceptionist), sess)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	sess := &Session{UserID: uuid.New(), Role: RoleAssistant}
	rec := doRequest(t, RequireManager(), sess)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	rec := doRequest(t, RequireRole(RoleManager), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess := Session{UserID: uuid.New(), OrganizationID: "org1", Role: RolePractitioner}
	ctx := WithSession(req.Context(), sess)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected session in context")
	}
	if got != sess {
		t.Errorf("session mismatch: got %+v", got)
	}

	if _, ok := FromContext(req.Context()); ok {
		t.Error("expected no session on bare context")
	}
}
