package oidc

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	// GoogleJWKSURL is Google's published signing key set
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	// GoogleIssuer is the issuer claim Google stamps on ID tokens
	GoogleIssuer = "https://accounts.google.com"
	// googleIssuerBare appears on some older tokens
	googleIssuerBare = "accounts.google.com"
)

// IDClaims are the verified identity claims the app cares about.
type IDClaims struct {
	Sub   string
	Email string
	Name  string
}

// Verifier validates Google ID tokens against the published JWKS.
type Verifier struct {
	jwksManager *JWKSManager
	clientID    string
}

// NewVerifier creates a verifier bound to one OAuth client id.
func NewVerifier(jwksManager *JWKSManager, clientID string) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		clientID:    clientID,
	}
}

// Verify checks signature, expiry, issuer, and audience, then extracts the
// identity claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*IDClaims, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, GoogleJWKSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithAudience(v.clientID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	if iss := token.Issuer(); iss != GoogleIssuer && iss != googleIssuerBare {
		return nil, fmt.Errorf("token issuer mismatch: got %q", iss)
	}

	claims := &IDClaims{Sub: token.Subject()}
	if claims.Sub == "" {
		return nil, fmt.Errorf("token missing subject claim")
	}

	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}
	if name, ok := token.Get("name"); ok {
		if nameStr, ok := name.(string); ok {
			claims.Name = nameStr
		}
	}

	return claims, nil
}
