package auth

import "context"

// Verifier validates a bearer token and resolves the dashboard user it
// belongs to.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (userID string, err error)
}
