// Package auth verifies HS256 bearer tokens issued by the auth service and
// carries the resulting principal through the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/httpserver"
)

const RoleAdmin = "admin"

var (
	ErrNoToken      = errors.New("auth: missing bearer token")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) IsAdmin() bool { return strings.EqualFold(strings.TrimSpace(p.Role), RoleAdmin) }

type ctxKeyPrincipal struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal{}).(Principal)
	return p, ok && p.UserID != ""
}

// WithUserID injects a plain user principal. Useful for testing.
func WithUserID(ctx context.Context, uid string) context.Context {
	return WithPrincipal(ctx, Principal{UserID: uid})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromContext(ctx)
	return p.UserID, ok
}

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// JWTVerifier checks signature, expiry and, when Issuer is set, the iss claim.
type JWTVerifier struct {
	Secret []byte
	Issuer string
	Leeway time.Duration
}

func (v JWTVerifier) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(v.Leeway))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return v.Secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves the principal of r from its Authorization header.
func (v JWTVerifier) Authenticate(r *http.Request) (Principal, error) {
	tok, ok := bearerToken(r)
	if !ok {
		return Principal{}, ErrNoToken
	}
	claims, err := v.Parse(tok)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: claims.Subject, Role: strings.TrimSpace(claims.Role)}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// RequireUser rejects requests without a valid bearer token.
func RequireUser(verifier JWTVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := verifier.Authenticate(r)
			if err != nil {
				api.Unauthorized(w, "authentication required", httpserver.RequestIDFromContext(r.Context()))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdmin must run after RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok || !p.IsAdmin() {
			api.Forbidden(w, "ADMIN_REQUIRED", "admin role required", httpserver.RequestIDFromContext(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
