// Package jwttoken issues and validates the HS256 access tokens shared by
// the admin console and the passenger portal.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/middleware"
)

// Claims carries the session fields inside the token. Role and Archived
// travel with the token so requests need no profile lookup.
type Claims struct {
	UserID      string `json:"user_id"`
	PassengerID string `json:"passenger_id,omitempty"`
	Role        string `json:"role"`
	Archived    bool   `json:"archived,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey, issuer, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAccessToken signs a token for a portal or console login. The
// passenger ID is empty for staff accounts.
func (s *JWTService) GenerateAccessToken(
	userID id.UserID,
	passengerID id.PassengerID,
	role id.Role,
	expiresIn time.Duration) (string, error) {
	claims := Claims{
		UserID: userID.String(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	}
	if !passengerID.IsNil() {
		claims.PassengerID = passengerID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token, returning the claims the auth
// middleware turns into a session.
func (s *JWTService) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.JWTClaims{
		UserID:      claims.UserID,
		PassengerID: claims.PassengerID,
		Role:        claims.Role,
		Archived:    claims.Archived,
	}, nil
}
