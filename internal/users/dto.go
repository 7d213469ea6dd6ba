package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/wishboard-backend/pkg/db/models"
	"github.com/google/uuid"
)

// UserDTO is the transport shape of a signed-in user.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name,omitempty"`
	Email     string    `json:"email"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Provider        string
	ProviderSubject string
	Email           string
	Name            *string
	Image           *string
}

// Identity is a verified account asserted by a sign-in provider.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
	Picture  string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Provider:        c.Provider,
		ProviderSubject: c.ProviderSubject,
		Email:           strings.ToLower(strings.TrimSpace(c.Email)),
		Name:            c.Name,
		Image:           c.Image,
	}
}

func (i Identity) toCreateDTO() CreateUserDTO {
	return CreateUserDTO{
		Provider:        i.Provider,
		ProviderSubject: i.Subject,
		Email:           i.Email,
		Name:            optional(i.Name),
		Image:           optional(i.Picture),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
