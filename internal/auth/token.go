package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gatehouse/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "gatehouse-api"
	tokenAudience = "gatehouse-client"

	// SessionTTL bounds how long an issued session token is honored.
	SessionTTL = 8 * time.Hour
)

// ErrMissingSecret is returned by Sign when no signing secret is configured.
// Token issuance fails closed rather than signing with an empty key.
var ErrMissingSecret = errors.New("signing secret not configured")

// ErrInvalidToken is the single verification failure. Bad signature, expired
// token, and malformed structure are deliberately indistinguishable to the
// caller.
var ErrInvalidToken = errors.New("invalid token")

// Principal is the decoded identity of a verified session token. It lives
// only for the duration of one request.
type Principal struct {
	UserID    uint
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

type sessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies compact, expiring session tokens carrying
// identity and role claims.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec returns a codec signing HS256 tokens with the given secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// Sign issues a session token for the given account.
func (tc *TokenCodec) Sign(user *models.User) (string, error) {
	if len(tc.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := tc.now()
	claims := sessionClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        newJTI(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tc.secret)
}

// Verify decodes and validates a session token, returning the principal it
// carries. Every failure mode maps to ErrInvalidToken.
func (tc *TokenCodec) Verify(tokenString string) (*Principal, error) {
	// Fail closed: with no secret configured there is nothing to trust.
	if len(tc.secret) == 0 {
		return nil, ErrInvalidToken
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Username == "" || claims.Role == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Principal{
		UserID:    uint(userID),
		Username:  claims.Username,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// newJTI creates a unique token ID so two tokens issued in the same second
// never collide.
func newJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
