package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopline/commerce/internal/core/ports"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// DefaultAlgorithm is the signing algorithm used when none is configured.
const DefaultAlgorithm = "HS256"

// accessClaims is the JWT payload: sub carries the email, user_id the account id.
type accessClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTCodec signs and verifies access tokens with a shared HMAC secret.
type JWTCodec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

// NewJWTCodec builds a codec for an HMAC algorithm (HS256, HS384 or HS512).
func NewJWTCodec(secret, algorithm string) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt: secret must not be empty")
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: unsupported signing algorithm %q", algorithm)
	}
	return &JWTCodec{secret: []byte(secret), method: method, now: time.Now}, nil
}

// WithClock returns a copy of the codec that reads the current time from now.
func (c *JWTCodec) WithClock(now func() time.Time) *JWTCodec {
	clone := *c
	clone.now = now
	return &clone
}

// Issue signs a token for the subject that expires after ttl.
func (c *JWTCodec) Issue(subjectID, subjectEmail string, ttl time.Duration) (string, error) {
	issuedAt := c.now()
	claims := accessClaims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectEmail,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and the subject claim.
// It returns ErrExpiredToken for expired tokens and ErrInvalidToken otherwise.
func (c *JWTCodec) Verify(token string) (*ports.TokenClaims, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &ports.TokenClaims{
		SubjectID:    claims.UserID,
		SubjectEmail: claims.Subject,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
