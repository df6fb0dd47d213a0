// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/dishatlas/internal/config"
)

// ErrInvalidCredentials is returned for a wrong username or password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// passwordCost is used by HashPassword.
const passwordCost = 12

// VerifyPassword compares password against a bcrypt hash.
func VerifyPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for security.admin_password_hash.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Token is the result of a successful login.
type Token struct {
	Value     string
	ExpiresAt time.Time
	Username  string
	Role      string
}

// Authenticator checks the single configured admin account and issues tokens.
type Authenticator struct {
	username     string
	passwordHash string
	jwt          *JWTManager
}

// NewAuthenticator creates an authenticator for the configured admin account.
func NewAuthenticator(cfg config.SecurityConfig, jwtManager *JWTManager) (*Authenticator, error) {
	if cfg.AdminUsername == "" {
		return nil, fmt.Errorf("admin username is required")
	}
	if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}
	return &Authenticator{
		username:     cfg.AdminUsername,
		passwordHash: cfg.AdminPasswordHash,
		jwt:          jwtManager,
	}, nil
}

// Login validates credentials and returns a signed admin token.
func (a *Authenticator) Login(username, password string) (*Token, error) {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// bcrypt runs even when the username is wrong.
	passwordErr := VerifyPassword(a.passwordHash, password)
	if !usernameMatch || passwordErr != nil {
		return nil, ErrInvalidCredentials
	}

	value, expiresAt, err := a.jwt.GenerateToken(a.username, RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &Token{
		Value:     value,
		ExpiresAt: expiresAt,
		Username:  a.username,
		Role:      RoleAdmin,
	}, nil
}
