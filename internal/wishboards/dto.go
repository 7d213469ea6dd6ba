package wishboards

import (
	"time"

	"github.com/angelmondragon/wishboard-backend/pkg/db/models"
	"github.com/google/uuid"
)

const (
	maxNameLength    = 200
	maxCaptionLength = 500
	maxURLLength     = 2048
)

// ImageInput is one image entry supplied by the client.
type ImageInput struct {
	URL     string  `json:"url" validate:"required"`
	Caption *string `json:"caption,omitempty"`
}

// CreateRequest is the POST /wishboards body. Images must be present, possibly empty.
type CreateRequest struct {
	Name   string       `json:"name"`
	Images []ImageInput `json:"images" validate:"required,dive"`
}

// UpdateRequest is the PATCH /wishboards/{id} body. Nil fields are left unchanged.
type UpdateRequest struct {
	Name   *string       `json:"name,omitempty"`
	Images *[]ImageInput `json:"images,omitempty" validate:"omitempty,dive"`
}

type ImageDTO struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Caption     *string   `json:"caption,omitempty"`
	WishboardID uuid.UUID `json:"wishboardId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WishboardDTO is the owner view when UserID is set and the public view otherwise.
type WishboardDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	Images    []ImageDTO `json:"images"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// OwnerView exposes every field of the board.
func OwnerView(w *models.Wishboard) *WishboardDTO {
	dto := PublicView(w)
	if dto != nil {
		owner := w.UserID
		dto.UserID = &owner
	}
	return dto
}

// PublicView omits owner-only fields.
func PublicView(w *models.Wishboard) *WishboardDTO {
	if w == nil {
		return nil
	}
	images := make([]ImageDTO, 0, len(w.Images))
	for _, img := range w.Images {
		images = append(images, ImageDTO{
			ID:          img.ID,
			URL:         img.URL,
			Caption:     img.Caption,
			WishboardID: img.WishboardID,
			CreatedAt:   img.CreatedAt,
		})
	}
	return &WishboardDTO{
		ID:        w.ID,
		Name:      w.Name,
		Images:    images,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
