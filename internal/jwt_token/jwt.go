package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures. Callers branch on these with errors.Is.
var (
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// AccessClaims are the claims of a short-lived access token. The subject is
// the user id. Access tokens are never persisted.
type AccessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only identity and lifetime; the server-side record is
// what makes a refresh token usable.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Service signs and verifies both token classes. Access and refresh tokens
// use disjoint HMAC secrets so one can never be presented as the other.
type Service struct {
	accessKey  []byte
	refreshKey []byte
	issuer     string
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIssuer sets the iss claim written into every token.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

func NewService(accessSecret, refreshSecret string, opts ...Option) (*Service, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("signing secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	s := &Service{
		accessKey:  []byte(accessSecret),
		refreshKey: []byte(refreshSecret),
		issuer:     "authgate",
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *Service) registered(subjectID string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subjectID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

// SignAccess issues an access token for the user.
func (s *Service) SignAccess(subjectID, email, name string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Email:            email,
		Name:             name,
		RegisteredClaims: s.registered(subjectID, ttl),
	})
	return token.SignedString(s.accessKey)
}

// SignRefresh issues a refresh token. Every call yields a distinct string
// because each token carries a fresh jti.
func (s *Service) SignRefresh(subjectID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: s.registered(subjectID, ttl),
	})
	return token.SignedString(s.refreshKey)
}

func (s *Service) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims, s.accessKey); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, claims, s.refreshKey); err != nil {
		return nil, err
	}
	return claims, nil
}

// parse verifies signature first and expiry second, so ErrExpired is only
// ever reported for authentic tokens.
func (s *Service) parse(tokenString string, claims jwt.Claims, key []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrSignatureInvalid
	}
	if !parsed.Valid {
		return ErrSignatureInvalid
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return ErrSignatureInvalid
	}
	return nil
}

// DecodeRefreshUnverified extracts the subject of a refresh token without
// checking signature or expiry. Only use the result to clean up state that
// belongs to that subject, never to authenticate.
func (s *Service) DecodeRefreshUnverified(tokenString string) (string, bool) {
	claims := &RefreshClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", false
	}
	if claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
