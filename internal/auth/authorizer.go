// Package auth resolves the calling actor from request credentials. Token
// issuance lives outside this service; handlers only need to know who is
// calling and whether the key carries staff rights.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ActorInfo identifies an authenticated caller.
type ActorInfo struct {
	ActorID string `json:"actor_id"`
	KeyType string `json:"key_type"` // 'student', 'staff'
	KeyName string `json:"key_name"`
}

// IsStaff reports whether the actor may approve or reject payments.
func (a *ActorInfo) IsStaff() bool { return a.KeyType == "staff" }

// Authorizer validates API keys.
type Authorizer interface {
	// Authorize resolves apiKey to an actor, or errors when the key is
	// unknown.
	Authorize(ctx context.Context, apiKey string) (*ActorInfo, error)
}

// ExtractAPIKey pulls the bearer credential from the Authorization header.
func ExtractAPIKey(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid Authorization header format, expected 'Bearer <api_key>'")
	}
	return parts[1], nil
}
