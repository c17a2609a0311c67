package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "triex/pkg/domain"
	"triex/pkg/requestcontext"
)

// JWTValidator validates bearer tokens and returns the claims we rely on.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is the subset of token claims the middleware turns into a
// Session. Role and Archived travel in the token so every request carries
// the caller's access level without a profile lookup.
type JWTClaims struct {
	UserID      string
	PassengerID string
	Role        string
	Archived    bool
}

// RequireAuth validates the Authorization header and injects the resulting
// Session into the request context. Downstream code reads the session via
// requestcontext.SessionFrom; there is no ambient auth state anywhere else.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			sess, err := sessionFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed claims",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid token claims")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithSession(ctx, sess)))
		})
	}
}

// RequireStaff gates admin-console routes. Archived accounts are rejected
// even when their role would otherwise qualify.
func RequireStaff(logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(logger, func(sess requestcontext.Session) bool {
		return sess.IsStaff()
	})
}

// RequireAdmin gates destructive operations (permanent trip deletion).
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(logger, func(sess requestcontext.Session) bool {
		return sess.Role == id.RoleAdmin && !sess.Archived
	})
}

func requireRole(logger *slog.Logger, allowed func(requestcontext.Session) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess, ok := requestcontext.SessionFrom(ctx)
			if !ok || !allowed(sess) {
				logger.WarnContext(ctx, "forbidden",
					"request_id", requestcontext.RequestID(ctx),
					"user_id", sess.UserID.String(),
					"role", sess.Role.String(),
				)
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionFromClaims(claims *JWTClaims) (requestcontext.Session, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return requestcontext.Session{}, err
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return requestcontext.Session{}, err
	}
	sess := requestcontext.Session{
		UserID:   userID,
		Role:     role,
		Archived: claims.Archived,
	}
	// Passenger linkage is optional: staff tokens carry no passenger ID.
	if claims.PassengerID != "" {
		passengerID, err := id.ParsePassengerID(claims.PassengerID)
		if err != nil {
			return requestcontext.Session{}, err
		}
		sess.PassengerID = passengerID
	}
	return sess, nil
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
