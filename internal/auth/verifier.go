package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/wishboard-backend/internal/users"
	"google.golang.org/api/idtoken"
)

const providerGoogle = "google"

// IdentityVerifier turns a provider credential into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (users.Identity, error)
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google ID tokens against the configured OAuth client.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

// NewGoogleVerifier builds a verifier for tokens issued to clientID.
func NewGoogleVerifier(clientID string) (*GoogleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}, nil
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (users.Identity, error) {
	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return users.Identity{}, fmt.Errorf("validate google id token: %w", err)
	}
	if payload.Subject == "" {
		return users.Identity{}, fmt.Errorf("google id token missing subject")
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return users.Identity{}, fmt.Errorf("google account email not verified")
	}
	return users.Identity{
		Provider: providerGoogle,
		Subject:  payload.Subject,
		Email:    claimString(payload.Claims, "email"),
		Name:     claimString(payload.Claims, "name"),
		Picture:  claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
