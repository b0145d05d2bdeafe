package auth

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const clockSkew = 30 * time.Second

var ErrMissingSubject = errors.New("token has no subject")

// Verifier checks RS-signed access tokens from one issuer against its JWKS.
type Verifier struct {
	issuer   string
	audience string
	keys     keyfunc.Keyfunc
	parser   *jwt.Parser
}

// NewVerifier fetches signing keys from jwksURL, or from the issuer's
// well-known JWKS document when jwksURL is empty. An empty audience skips
// the audience check.
func NewVerifier(issuer, audience, jwksURL string) (*Verifier, error) {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return nil, errors.New("auth issuer must be set")
	}
	if jwksURL == "" {
		jwksURL = strings.TrimRight(issuer, "/") + "/.well-known/jwks.json"
	}

	keys, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("load JWKS from %s: %w", jwksURL, err)
	}

	opts := []jwt.ParserOption{
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(clockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &Verifier{
		issuer:   issuer,
		audience: audience,
		keys:     keys,
		parser:   jwt.NewParser(opts...),
	}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
	Name  string `json:"name"`
}

// Verify validates the token signature and registered claims.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	var tc tokenClaims
	if _, err := v.parser.ParseWithClaims(raw, &tc, v.keys.Keyfunc); err != nil {
		return nil, err
	}
	if tc.Subject == "" {
		return nil, ErrMissingSubject
	}

	claims := &Claims{
		Subject:  tc.Subject,
		Issuer:   tc.Issuer,
		Audience: tc.Audience,
		Scopes:   strings.Fields(tc.Scope),
		Name:     tc.Name,
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}

// AuthDisabled reports whether AUTH_DISABLED=true applies. It is ignored
// inside Lambda so a deployed function can't be opened by accident.
func AuthDisabled() bool {
	if !strings.EqualFold(os.Getenv("AUTH_DISABLED"), "true") {
		return false
	}
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		log.Print("AUTH_DISABLED ignored inside Lambda")
		return false
	}
	return true
}
