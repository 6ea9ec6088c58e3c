package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"filehost/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultSessionTTL = 24 * time.Hour
	signingKeySize    = 32
)

// Claims defines the session JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// SessionService issues and verifies session tokens.
type SessionService struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewSessionService builds a token service. An empty key is replaced by a random one,
// which invalidates every session on restart.
func NewSessionService(signingKey []byte, ttl time.Duration) *SessionService {
	if len(signingKey) == 0 {
		signingKey = make([]byte, signingKeySize)
		_, _ = rand.Read(signingKey)
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{signingKey: signingKey, ttl: ttl, now: time.Now}
}

// TTL returns how long issued tokens stay valid.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// IssueToken signs a session claim.
func (s *SessionService) IssueToken(sess models.Session) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: sess.Username,
		Role:     sess.Role,
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns the session it carries.
// The role inside is informational only; guards re-read it from the store.
func (s *SessionService) ParseToken(accessToken string) (models.Session, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return models.Session{}, ErrInvalidToken
	}
	return models.Session{Username: claims.Username, Role: claims.Role}, nil
}
