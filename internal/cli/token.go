package cli

import (
	"fmt"
	"time"

	"ride-share/internal/domain/user"
	"ride-share/internal/general/jwt"
)

// GenerateUserToken mints a dev JWT for a seeded user and returns the raw
// token along with the claims baked into it. The role string is validated
// before signing so a typo fails here rather than at the first guarded
// endpoint.
//
// Dev tooling only; nothing in the services imports this package.
func GenerateUserToken(secret string, userID int64, roleStr string, ttl time.Duration) (string, jwt.Claims, error) {
	role, err := user.ParseRole(roleStr)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("invalid role %q: %w", roleStr, err)
	}

	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	token, claims, err := jwt.NewManager(secret, ttl).IssueUserToken(userID, role)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("issue token: %w", err)
	}
	return token, *claims, nil
}
