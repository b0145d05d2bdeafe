package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenCookie is read when a browser form post carries no Authorization header.
const TokenCookie = "access_token"

type Options struct {
	RequireScopes []string
	// Disabled lets every request through as a local user.
	Disabled bool
}

// Middleware rejects requests without a valid token and stores the
// verified claims on the request context.
func Middleware(v *Verifier, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Disabled {
			setClaims(c, &Claims{Subject: "local", Issuer: "local"})
			c.Next()
			return
		}
		if v == nil {
			abort(c, "auth is not configured")
			return
		}

		raw, ok := tokenFrom(c)
		if !ok {
			log.Printf("auth rejected path=%s reason=no_token", c.Request.URL.Path)
			abort(c, "missing bearer token")
			return
		}
		claims, err := v.Verify(raw)
		if err != nil {
			log.Printf("auth rejected path=%s reason=invalid err=%v", c.Request.URL.Path, err)
			abort(c, "invalid token")
			return
		}
		for _, scope := range opts.RequireScopes {
			if !claims.HasScope(scope) {
				log.Printf("auth rejected path=%s sub=%s reason=scope missing=%s", c.Request.URL.Path, claims.Subject, scope)
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
				return
			}
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
}

func tokenFrom(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		return bearerToken(header)
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abort(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
