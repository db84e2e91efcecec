package auth

import (
	"context"

	"github.com/google/uuid"
)

// Staff roles recognized across the practice. A user carries exactly one.
const (
	RoleOrganizationOwner = "ORGANIZATION_OWNER"
	RoleManager           = "MANAGER"
	RolePractitioner      = "PRACTITIONER"
	RoleAssistant         = "ASSISTANT"
	RoleReceptionist      = "RECEPTIONIST"
)

// Session identifies the authenticated caller for the duration of a request.
type Session struct {
	UserID         uuid.UUID
	OrganizationID string
	Role           string
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a context carrying the given session.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext retrieves the caller's session. ok is false when the request
// was not authenticated.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// HasManagerPermissions reports whether a role may review leave requests and
// edit clinic schedules. Centralized here so handlers never duplicate the
// role list.
func HasManagerPermissions(role string) bool {
	return role == RoleOrganizationOwner || role == RoleManager
}
