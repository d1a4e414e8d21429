// Package auth issues and verifies the admin capability token. The
// engine never inspects who holds the capability beyond the subject
// address the fee is paid to; possession of a valid token is the whole
// authorization check.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// adminCapability is the claim value marking a token as the lottery
// admin capability
const adminCapability = "lottery_admin"

// Service signs and verifies capability tokens with an HMAC secret
type Service struct {
	secret []byte
}

// NewService creates a capability service with the given signing secret
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// IssueAdminToken mints an admin capability token whose subject is the
// admin's payout address.
func (s *Service) IssueAdminToken(adminAddress string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": adminAddress,
		"cap": adminCapability,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// VerifyAdmin checks the capability token and returns the admin's
// payout address. ok is false for missing, malformed, expired, or
// non-admin tokens.
func (s *Service) VerifyAdmin(tokenString string) (string, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	if cap, _ := claims["cap"].(string); cap != adminCapability {
		return "", false
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", false
	}
	return subject, true
}

// HasAdminCapability reports whether the token carries the admin
// capability
func (s *Service) HasAdminCapability(tokenString string) bool {
	_, ok := s.VerifyAdmin(tokenString)
	return ok
}
