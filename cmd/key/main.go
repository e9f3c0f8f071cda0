package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ride-share/internal/cli"
)

// key mints a signed bearer token for local testing, so curl sessions
// against the services do not need a login flow.
func main() {
	userID := flag.Int64("user-id", 0, "numeric ID of the user (subject)")
	role := flag.String("role", "rider", "user role: rider | driver | admin")
	secret := flag.String("secret", "", "JWT HMAC secret (HS256)")
	ttl := flag.Duration("ttl", 2*time.Hour, "token lifetime")
	flag.Parse()

	if *userID <= 0 || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: key --user-id=<id> --secret='<secret>' [--role=rider] [--ttl=2h]")
		os.Exit(2)
	}

	token, claims, err := cli.GenerateUserToken(*secret, *userID, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "sub=%s role=%s iat=%s exp=%s\n",
		claims.Subject, claims.Role,
		claims.IssuedAt.Time.UTC().Format(time.RFC3339),
		claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
}
