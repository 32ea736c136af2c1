package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess is the discriminator carried in every token this service
// issues. Reserving the claim keeps room for future token kinds (e.g.
// refresh) without the two being cross-accepted.
const TokenTypeAccess = "access"

var (
	ErrExpiredToken   = errors.New("token has expired")
	ErrMalformedToken = errors.New("invalid token")
	ErrWrongTokenType = errors.New("invalid token type")
)

// TokenClaims is the verified claim set of an access token.
type TokenClaims struct {
	Subject   string
	TokenType string
	ExpiresAt time.Time
}

type accessClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-bound bearer tokens.
// Tokens are self-contained and never stored server-side; once issued, a
// token stays cryptographically valid until its natural expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue mints an HS256-signed token for subject, expiring after the service
// TTL. Issuance has no side effects and no storage.
func (s *TokenService) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

// IssueWithTTL mints a token with an explicit lifetime. A non-positive ttl
// produces an already-expired token, which is useful in tests.
func (s *TokenService) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := accessClaims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and claims of a token string and returns the
// decoded claim set. Failures are classified as ErrExpiredToken,
// ErrWrongTokenType, or ErrMalformedToken (bad signature, undecodable
// payload, missing subject or expiry).
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrMalformedToken
	}
	if !token.Valid {
		return nil, ErrMalformedToken
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformedToken
	}
	// Expiry is re-checked here on top of the library's own validation, so a
	// disagreement between the two (clock-skew leeway, library defaults)
	// can never let an expired token through.
	if !time.Now().UTC().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpiredToken
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}

	return &TokenClaims{
		Subject:   claims.Subject,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
