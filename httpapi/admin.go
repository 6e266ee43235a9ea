// Package httpapi exposes the relayer over net/http: an anonymous
// submission endpoint, read-only info/logs endpoints, and a
// JWT-bearer-gated admin surface.
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// adminClaims is the minimal JWT payload accepted on the admin surface:
// a fixed-subject credential, not a per-caller batch token.
type adminClaims struct {
	jwt.RegisteredClaims
}

// AdminAuth verifies the Authorization: Bearer header against an HMAC
// secret before admitting a request to an admin handler.
type AdminAuth struct {
	secret []byte
}

func NewAdminAuth(secret string) *AdminAuth {
	return &AdminAuth{secret: []byte(secret)}
}

var errMissingBearer = errors.New("missing or malformed Authorization header")

func (a *AdminAuth) validate(r *http.Request) error {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return errMissingBearer
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenStr, &adminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid admin token")
	}
	return nil
}

// Middleware wraps next, rejecting any request that fails validate.
func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.validate(r); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IssueAdminToken mints an HS256 admin bearer token signed with
// secret, for operators to hand to whatever calls the admin surface.
func IssueAdminToken(secret, subject string, expiry jwt.NumericDate) (string, error) {
	claims := &adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: &expiry,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
