// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth holds the credential types used to authorize requests to a
// Dify application. The common case is a static application API key; bearer
// tokens and JWTs are supported for deployments that front the API with
// their own token issuer.
package auth

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"
)

// CredentialType represents the type of credentials.
type CredentialType string

// Credential types.
const (
	CredentialTypeNone   CredentialType = "none"
	CredentialTypeAPIKey CredentialType = "api_key"
	CredentialTypeBearer CredentialType = "bearer"
	CredentialTypeJWT    CredentialType = "jwt"
)

// Credentials represents authentication credentials for one application.
type Credentials struct {
	Type        CredentialType `json:"type"`
	APIKey      string         `json:"api_key,omitempty"`
	AccessToken string         `json:"access_token,omitempty"`
	TokenType   string         `json:"token_type,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
}

// NewAPIKey creates credentials from a Dify application API key. The key is
// sent as a bearer token.
func NewAPIKey(key string) *Credentials {
	return &Credentials{
		Type:   CredentialTypeAPIKey,
		APIKey: key,
	}
}

// NewBearer creates bearer token credentials. expiresAt may be nil for
// tokens without a known expiry.
func NewBearer(token string, expiresAt *time.Time) *Credentials {
	return &Credentials{
		Type:        CredentialTypeBearer,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}
}

// ParseJWT creates credentials from a JWT token string, taking the expiry
// from the token's exp claim. The signature is not verified; the server is
// the verifying party.
func ParseJWT(tokenString string) (*Credentials, error) {
	token, err := jwt.ParseInsecure([]byte(tokenString))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT token: %w", err)
	}

	var expiresAt *time.Time
	if exp, ok := token.Expiration(); ok && !exp.IsZero() {
		expiresAt = &exp
	}

	return &Credentials{
		Type:        CredentialTypeJWT,
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// IsExpired checks if the credentials are expired.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*c.ExpiresAt)
}

// IsValid checks if the credentials are valid.
func (c *Credentials) IsValid() bool {
	if c.Type == CredentialTypeNone {
		return true
	}

	if c.IsExpired() {
		return false
	}

	switch c.Type {
	case CredentialTypeAPIKey:
		return c.APIKey != ""
	case CredentialTypeBearer, CredentialTypeJWT:
		return c.AccessToken != ""
	default:
		return false
	}
}

// ToAuthHeader converts credentials to an Authorization header value.
func (c *Credentials) ToAuthHeader() (string, error) {
	if !c.IsValid() {
		return "", fmt.Errorf("credentials are not valid")
	}

	switch c.Type {
	case CredentialTypeAPIKey:
		return fmt.Sprintf("Bearer %s", c.APIKey), nil
	case CredentialTypeBearer, CredentialTypeJWT:
		return fmt.Sprintf("Bearer %s", c.AccessToken), nil
	default:
		return "", fmt.Errorf("unsupported credential type for auth header: %s", c.Type)
	}
}
