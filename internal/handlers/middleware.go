package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserIDContextKey ContextKey = "userID"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	jwtSecret []byte
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{jwtSecret: []byte(jwtSecret)}
}

// RequireAuth validates the bearer token and puts the user id (the
// token's sub claim) on the request context
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token", "", nil)
			return
		}

		userID, err := m.userIDFromToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid token", "Rejected bearer token", err)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func (m *Middleware) userIDFromToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// UserIDFromContext retrieves the authenticated user id from the request
// context, or "" when the request was not authenticated
func UserIDFromContext(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	if !ok {
		return ""
	}
	return userID
}
