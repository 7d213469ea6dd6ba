package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/wishboard-backend/pkg/db"
	"github.com/angelmondragon/wishboard-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wishboard-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service resolves provider identities to local users.
type Service interface {
	UpsertFromIdentity(ctx context.Context, identity Identity) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
}

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByProviderSubject(ctx context.Context, provider, subject string) (*models.User, error)
}

type service struct {
	repo userRepository
}

// NewService builds a users service.
func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: repo}, nil
}

// UpsertFromIdentity returns the user bound to identity, creating it on first sign-in.
// Profile fields of an existing user are left unchanged.
func (s *service) UpsertFromIdentity(ctx context.Context, identity Identity) (*models.User, error) {
	if strings.TrimSpace(identity.Provider) == "" || strings.TrimSpace(identity.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")
	}
	if strings.TrimSpace(identity.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized").WithDetails(map[string]any{"reason": "email claim missing"})
	}

	existing, err := s.repo.FindByProviderSubject(ctx, identity.Provider, identity.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	created, err := s.repo.Create(ctx, identity.toCreateDTO())
	if err == nil {
		return created, nil
	}
	if db.IsUniqueViolation(err, "") {
		// a concurrent first sign-in may have won the insert
		winner, findErr := s.repo.FindByProviderSubject(ctx, identity.Provider, identity.Subject)
		if findErr == nil {
			return winner, nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "lookup user")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already linked to another account")
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}
