package testutil

import (
	"net/http"
	"time"

	id "triex/pkg/domain"
	"triex/pkg/requestcontext"
)

// WithSession attaches a session to the request context, simulating what the
// auth middleware does for authenticated requests.
func WithSession(req *http.Request, sess requestcontext.Session) *http.Request {
	return req.WithContext(requestcontext.WithSession(req.Context(), sess))
}

// WithStaff attaches an operator session with a fresh user ID.
func WithStaff(req *http.Request) *http.Request {
	return WithSession(req, requestcontext.Session{
		UserID: id.NewUserID(),
		Role:   id.RoleOperator,
	})
}

// WithAdmin attaches an admin session with a fresh user ID.
func WithAdmin(req *http.Request) *http.Request {
	return WithSession(req, requestcontext.Session{
		UserID: id.NewUserID(),
		Role:   id.RoleAdmin,
	})
}

// WithPassenger attaches a passenger session linked to the given passenger.
func WithPassenger(req *http.Request, passengerID id.PassengerID) *http.Request {
	return WithSession(req, requestcontext.Session{
		UserID:      id.NewUserID(),
		PassengerID: passengerID,
		Role:        id.RolePassenger,
	})
}

// WithTime pins the request-scoped clock, so handlers exercising the status
// classifier see a deterministic "today".
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
