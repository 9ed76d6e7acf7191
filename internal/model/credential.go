package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialRequest is the body of POST /credentials/validate
type CredentialRequest struct {
	CredentialToken string `json:"credentialToken"`
}

// CredentialResponse is returned when a credential is accepted
type CredentialResponse struct {
	Valid       bool      `json:"valid"`
	AccessToken string    `json:"accessToken,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

// AccessClaims are the JWT claims of an access pass.
// They carry no credential material.
type AccessClaims struct {
	jwt.RegisteredClaims
}
