// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// The authenticated Session travels through the context instead of living in
// ambient process-wide state: middleware sets it once per request, services
// read it wherever authorization or attribution is needed. Keeping this
// package free of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	sess, ok := requestcontext.SessionFrom(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithSession(ctx, sess)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithSession(ctx, testSession)
package requestcontext

import (
	"context"
	"time"

	id "triex/pkg/domain"
)

// Session is the authenticated caller for the duration of one request.
// Archived accounts keep a valid session but are fenced off from every
// operation except viewing the archived-account screen.
type Session struct {
	UserID      id.UserID
	PassengerID id.PassengerID // nil unless the login is linked to a passenger
	Role        id.Role
	Archived    bool
}

// IsStaff reports whether the session may use admin-console operations.
func (s Session) IsStaff() bool { return s.Role.IsStaff() && !s.Archived }

// Context key types (unexported for encapsulation).
type (
	sessionKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeySession     = sessionKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
)

// SessionFrom retrieves the authenticated session from the context.
func SessionFrom(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(ContextKeySession).(Session)
	return sess, ok
}

// WithSession injects a session into the context.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, sess)
}

// UserID retrieves the authenticated user ID, or the zero value if no
// session is present.
func UserID(ctx context.Context) id.UserID {
	sess, ok := SessionFrom(ctx)
	if !ok {
		return id.UserID{}
	}
	return sess.UserID
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, tests without
// an injected clock). Status classification and audit timestamps read the
// clock through this accessor so tests can pin "today".
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
