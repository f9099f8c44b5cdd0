package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gramseva/admin-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken covers every token failure: bad signature, malformed
// payload, expiry. Callers see one kind so the response never reveals which
// check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// CredentialService owns password hashing and token issuance/validation.
type CredentialService struct {
	cfg *config.Config
}

func NewCredentialService(cfg *config.Config) *CredentialService {
	return &CredentialService{cfg: cfg}
}

func (s *CredentialService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *CredentialService) VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// DefaultExpiry is the configured access token lifetime.
func (s *CredentialService) DefaultExpiry() time.Duration {
	return s.cfg.JWTExpiry
}

// IssueToken signs an HS256 token with subject=email and exp=now+ttl. The
// ttl is honored verbatim: zero or negative yields an already expired token.
func (s *CredentialService) IssueToken(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature and expiry in one pass and returns the
// claims. Any failure collapses to ErrInvalidToken.
func (s *CredentialService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Subject extracts the sub claim from validated claims.
func Subject(claims jwt.MapClaims) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
