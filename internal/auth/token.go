// Package auth issues and verifies CivicDesk bearer tokens and hashes
// account secrets.
//
// Citizen and employee tokens share one HMAC secret but carry different
// audiences, so a token minted for one side never verifies on the other.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AudienceCitizen  = "citizen"
	AudienceEmployee = "employee"
)

// ErrUnauthenticated is returned for every verification failure. Callers
// must not be able to tell a bad signature from an expired token.
var ErrUnauthenticated = errors.New("invalid or expired token")

// CitizenClaims carry only the citizen's id in the subject.
type CitizenClaims struct {
	jwt.RegisteredClaims
}

// EmployeeClaims carry the employee id plus the role and district that were
// current when the token was issued.
type EmployeeClaims struct {
	Role     models.Role `json:"role"`
	District string      `json:"district,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig is the immutable signing configuration.
type TokenConfig struct {
	Secret      string
	Issuer      string
	CitizenTTL  time.Duration
	EmployeeTTL time.Duration
}

// TokenIssuer mints and verifies both token kinds.
type TokenIssuer struct {
	secret      []byte
	issuer      string
	citizenTTL  time.Duration
	employeeTTL time.Duration
	now         func() time.Time
}

// NewTokenIssuer creates an issuer. An empty secret is rejected: tokens
// signed with an empty key would verify for anyone.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "civicdesk"
	}
	if cfg.CitizenTTL <= 0 {
		cfg.CitizenTTL = 5 * 24 * time.Hour
	}
	if cfg.EmployeeTTL <= 0 {
		cfg.EmployeeTTL = 8 * time.Hour
	}
	return &TokenIssuer{
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		citizenTTL:  cfg.CitizenTTL,
		employeeTTL: cfg.EmployeeTTL,
		now:         time.Now,
	}, nil
}

// CitizenTTL is the validity window of citizen tokens.
func (t *TokenIssuer) CitizenTTL() time.Duration { return t.citizenTTL }

// EmployeeTTL is the validity window of employee tokens.
func (t *TokenIssuer) EmployeeTTL() time.Duration { return t.employeeTTL }

func (t *TokenIssuer) registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    t.issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// IssueCitizen signs a citizen session token.
func (t *TokenIssuer) IssueCitizen(citizenID uuid.UUID) (string, error) {
	claims := CitizenClaims{
		RegisteredClaims: t.registered(citizenID.String(), AudienceCitizen, t.citizenTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign citizen token: %w", err)
	}
	return signed, nil
}

// IssueEmployee signs an employee session token embedding role and district.
func (t *TokenIssuer) IssueEmployee(e *models.Employee) (string, error) {
	claims := EmployeeClaims{
		Role:             e.Role,
		RegisteredClaims: t.registered(e.ID.String(), AudienceEmployee, t.employeeTTL),
	}
	if e.Role == models.RoleEmployee {
		claims.District = e.District
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign employee token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) parse(tokenStr, audience string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	return err
}

// VerifyCitizen validates a citizen token and returns the citizen id.
func (t *TokenIssuer) VerifyCitizen(tokenStr string) (uuid.UUID, error) {
	claims := &CitizenClaims{}
	if err := t.parse(tokenStr, AudienceCitizen, claims); err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

// VerifyEmployee validates an employee token and returns its claims.
func (t *TokenIssuer) VerifyEmployee(tokenStr string) (*EmployeeClaims, error) {
	claims := &EmployeeClaims{}
	if err := t.parse(tokenStr, AudienceEmployee, claims); err != nil {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// ExtractBearer pulls the token out of an Authorization header value.
func ExtractBearer(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrUnauthenticated
	}
	return parts[1], nil
}
