package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "operator_session"

	// sessionScope marks a token as a dashboard session. A token signed
	// with the same secret for another purpose will not authenticate.
	sessionScope = "billing:operate"
)

var errInvalidSession = errors.New("invalid session token")

// sessionClaims identify which operator logged in and what the token is
// good for.
type sessionClaims struct {
	Operator string `json:"op"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// AuthManager mints and verifies operator session tokens. Tokens travel
// either as a Bearer header (API clients) or as an HttpOnly cookie (the
// dashboard).
type AuthManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	domain string
}

func NewAuthManager(secret string, secure bool, domain string, ttl time.Duration) *AuthManager {
	return &AuthManager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure, // true in prod (TLS)
		domain: domain, // "" keeps the cookie host-only
	}
}

// Mint issues a session for the named operator and sets the session
// cookie. The signed token is also returned for Bearer use.
func (a *AuthManager) Mint(w http.ResponseWriter, operator string) (string, error) {
	if operator == "" {
		operator = "operator"
	}
	now := time.Now()
	claims := sessionClaims{
		Operator: operator,
		Scope:    sessionScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, a.sessionCookie(signed, int(a.ttl.Seconds())))
	return signed, nil
}

// Clear expires the session cookie.
func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, a.sessionCookie("", -1))
}

func (a *AuthManager) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   a.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Authenticate extracts and verifies the session token from the request.
func (a *AuthManager) Authenticate(r *http.Request) (*sessionClaims, error) {
	tok := ""
	if hdr := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		tok = strings.TrimSpace(hdr[7:])
	} else if c, err := r.Cookie(sessionCookieName); err == nil {
		tok = c.Value
	}
	if tok == "" {
		return nil, errInvalidSession
	}

	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.Scope != sessionScope {
		return nil, errInvalidSession
	}
	return claims, nil
}

type ctxKey int

const ctxOperator ctxKey = iota

func withOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, ctxOperator, operator)
}

// operatorFrom returns the authenticated operator name, or "" on an
// unauthenticated context.
func operatorFrom(ctx context.Context) string {
	op, _ := ctx.Value(ctxOperator).(string)
	return op
}
