// Package googleauth resolves Google OAuth authorization codes into verified
// user profiles. ID tokens are validated against Google's JWKS.
package googleauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultLeeway  = 30 * time.Second
	defaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// Google issues tokens under either issuer form.
var acceptedIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// Profile is the identity extracted from a verified ID token.
type Profile struct {
	Subject string
	Email   string
	Name    string
}

// Verifier validates Google ID tokens against a JWKS endpoint.
type Verifier struct {
	audience string
	keyfunc  keyfunc.Keyfunc
	parser   *jwt.Parser
}

// NewVerifier builds a verifier for the given OAuth client id, with an
// optional JWKS URL override for tests.
func NewVerifier(clientID, jwksURL string) (*Verifier, error) {
	if clientID == "" {
		return nil, errors.New("client id must be set")
	}
	if jwksURL == "" {
		jwksURL = defaultJWKSURL
	}

	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}

	parser := jwt.NewParser(
		jwt.WithAudience(clientID),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
	)

	return &Verifier{
		audience: clientID,
		keyfunc:  keyProvider,
		parser:   parser,
	}, nil
}

// Verify parses and validates an ID token, returning the embedded profile.
func (v *Verifier) Verify(tokenString string) (*Profile, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc.Keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	if !issuerAccepted(readString(mapClaims, "iss")) {
		return nil, errors.New("token issuer is not google")
	}

	profile := &Profile{
		Subject: readString(mapClaims, "sub"),
		Email:   readString(mapClaims, "email"),
		Name:    readString(mapClaims, "name"),
	}
	if profile.Subject == "" {
		return nil, errors.New("token missing sub")
	}
	if profile.Email == "" {
		return nil, errors.New("token missing email")
	}
	return profile, nil
}

func issuerAccepted(issuer string) bool {
	for _, accepted := range acceptedIssuers {
		if issuer == accepted {
			return true
		}
	}
	return false
}

func readString(claims jwt.MapClaims, key string) string {
	val, ok := claims[key]
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
