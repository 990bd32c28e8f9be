// Package admin issues and verifies the bearer tokens that guard the admin
// API.
package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer    = "bakehouse-storefront"
	adminRole = "admin"
)

var (
	ErrNotConfigured      = errors.New("admin login is not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Config struct {
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func NewAuthenticator(cfg Config, log *slog.Logger) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 8 * time.Hour
	}
	return &Authenticator{
		hash:   []byte(cfg.PasswordHash),
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
		log:    log,
	}
}

func (a *Authenticator) Configured() bool {
	return len(a.hash) > 0 && len(a.secret) > 0
}

// Login checks the password against the configured bcrypt hash and returns a
// signed token with its expiry.
func (a *Authenticator) Login(password string) (string, time.Time, error) {
	if !a.Configured() {
		return "", time.Time{}, ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		a.log.Warn("admin login rejected")
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := &Claims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   adminRole,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	a.log.Info("admin logged in", "expires_at", expiresAt)
	return token, expiresAt, nil
}

func (a *Authenticator) Verify(tokenStr string) (*Claims, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid || claims.Role != adminRole {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
