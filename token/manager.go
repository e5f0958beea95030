package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind selects which credential family a token belongs to. Access and
// refresh tokens are signed with different secrets so one kind can never
// be replayed as the other.
type Kind int

const (
	// KindAccess is the short-lived credential presented on every API call.
	KindAccess Kind = iota
	// KindRefresh is the long-lived credential used only to mint new
	// access tokens, additionally gated by the session registry.
	KindRefresh
)

var (
	// ErrExpired is returned when a token's embedded expiry has elapsed.
	ErrExpired = errors.New("token expired")
	// ErrMalformed is returned when a token cannot be parsed at all.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid is returned when a token parses but was not
	// signed with the secret for the requested kind.
	ErrSignatureInvalid = errors.New("token signature invalid")
)

// Config defines the signing material and lifetimes for both token kinds.
//
// Config instances are intended to be set up during initialization and then
// treated as immutable.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Leeway        time.Duration
}

// Claims is the payload embedded in both token kinds. Only the user ID is
// carried; roles and permissions are always re-read from the store so a
// stale token can never widen access.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Manager signs and verifies access and refresh tokens (HS256).
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a token Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("both access and refresh secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// IssueAccess signs a new access token for userID.
func (m *Manager) IssueAccess(userID string) (string, error) {
	return m.issue(userID, m.config.AccessTTL, m.config.AccessSecret)
}

// IssueRefresh signs a new refresh token for userID.
func (m *Manager) IssueRefresh(userID string) (string, error) {
	return m.issue(userID, m.config.RefreshTTL, m.config.RefreshSecret)
}

func (m *Manager) issue(userID string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique ID keeps two tokens issued within the same
			// second distinguishable in the session registry.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Verify parses and validates tokenStr as the given kind. Failures are
// classified as [ErrExpired], [ErrSignatureInvalid], or [ErrMalformed].
func (m *Manager) Verify(tokenStr string, kind Kind) (*Claims, error) {
	secret := m.config.AccessSecret
	if kind == KindRefresh {
		secret = m.config.RefreshSecret
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	if claims.UserID == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}

// Decode extracts claims WITHOUT verifying signature or expiry. Used by
// logout, which must be able to drop an expired-but-still-registered
// refresh token.
func (m *Manager) Decode(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
