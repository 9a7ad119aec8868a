// Package auth issues and verifies bearer tokens against an injected
// credential-and-role provider.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agro-telemetry-backend/config"
)

// RoleAdmin bypasses every role requirement.
const RoleAdmin = "admin"

// ErrInvalidCredentials is returned when no user matches the supplied
// username/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Principal identifies an authenticated caller.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// CredentialProvider resolves a username/password pair to a principal.
type CredentialProvider interface {
	Authenticate(username, password string) (*Principal, error)
}

// StaticProvider serves the credential table from configuration.
type StaticProvider struct {
	users []config.User
}

// NewStaticProvider creates a provider over the configured user list.
func NewStaticProvider(users []config.User) *StaticProvider {
	return &StaticProvider{users: users}
}

func (p *StaticProvider) Authenticate(username, password string) (*Principal, error) {
	for _, u := range p.users {
		if u.Username == username && u.Password == password {
			return &Principal{ID: u.ID, Username: u.Username, Role: u.Role}, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Authorize reports whether the principal satisfies the required role. Admin
// satisfies everything.
func Authorize(p *Principal, requiredRole string) bool {
	if p == nil {
		return false
	}
	return p.Role == requiredRole || p.Role == RoleAdmin
}

// Claims is the JWT claim set carried by issued tokens.
type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 bearer tokens.
type Service struct {
	provider CredentialProvider
	secret   []byte
	ttl      time.Duration
}

// NewService creates an auth service with the given provider, signing secret
// and token lifetime.
func NewService(provider CredentialProvider, secret string, ttl time.Duration) *Service {
	return &Service{provider: provider, secret: []byte(secret), ttl: ttl}
}

// Login authenticates the credentials and issues a signed token.
func (s *Service) Login(username, password string) (string, *Principal, error) {
	principal, err := s.provider.Authenticate(username, password)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	claims := Claims{
		ID:       principal.ID,
		Username: principal.Username,
		Role:     principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, principal, nil
}

// Verify parses and validates a token, returning the embedded principal.
func (s *Service) Verify(tokenStr string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return &Principal{ID: claims.ID, Username: claims.Username, Role: claims.Role}, nil
}
