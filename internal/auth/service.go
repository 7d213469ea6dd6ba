package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/wishboard-backend/internal/users"
	pkgAuth "github.com/angelmondragon/wishboard-backend/pkg/auth"
	"github.com/angelmondragon/wishboard-backend/pkg/auth/session"
	"github.com/angelmondragon/wishboard-backend/pkg/config"
	"github.com/angelmondragon/wishboard-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wishboard-backend/pkg/errors"
)

const unauthorizedMessage = "Unauthorized"

// Service defines the behavior needed by the auth controller.
type Service interface {
	SignInWithGoogle(ctx context.Context, req GoogleSignInRequest) (*SessionResponse, error)
}

type userResolver interface {
	UpsertFromIdentity(ctx context.Context, identity users.Identity) (*models.User, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type service struct {
	verifier IdentityVerifier
	users    userResolver
	session  sessionManager
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Verifier       IdentityVerifier
	Users          userResolver
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
}

// NewService constructs a sign-in service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Verifier == nil {
		return nil, fmt.Errorf("identity verifier is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users service is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		verifier: params.Verifier,
		users:    params.Users,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		now:      time.Now,
	}, nil
}

func (s *service) SignInWithGoogle(ctx context.Context, req GoogleSignInRequest) (*SessionResponse, error) {
	credential := strings.TrimSpace(req.IDToken)
	if credential == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid request data").WithDetails(map[string]string{"idToken": "is required"})
	}

	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, unauthorizedMessage)
	}

	user, err := s.users.UpsertFromIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}
