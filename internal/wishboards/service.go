package wishboards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/wishboard-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wishboard-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	notFoundMessage     = "Wishboard not found"
	unauthorizedMessage = "Unauthorized"
	invalidDataMessage  = "Invalid request data"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes ownership-checked CRUD over wishboards.
type Service interface {
	List(ctx context.Context, requesterID uuid.UUID) ([]WishboardDTO, error)
	Create(ctx context.Context, requesterID uuid.UUID, req CreateRequest) (*WishboardDTO, error)
	Get(ctx context.Context, id string, requesterID *uuid.UUID) (*WishboardDTO, error)
	Update(ctx context.Context, id string, requesterID uuid.UUID, req UpdateRequest) (*WishboardDTO, error)
	Delete(ctx context.Context, id string, requesterID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds a wishboards service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishboards repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, requesterID uuid.UUID) ([]WishboardDTO, error) {
	boards, err := s.repo.ListByUser(ctx, requesterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishboards")
	}
	out := make([]WishboardDTO, 0, len(boards))
	for i := range boards {
		out = append(out, *OwnerView(&boards[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, requesterID uuid.UUID, req CreateRequest) (*WishboardDTO, error) {
	if req.Images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidDataMessage).WithDetails(map[string]string{"images": "is required"})
	}
	inputs, err := normalizeImages(req.Images)
	if err != nil {
		return nil, err
	}

	board := &models.Wishboard{
		ID:     uuid.New(),
		Name:   normalizeName(req.Name),
		UserID: requesterID,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, board); err != nil {
			return err
		}
		images := buildImages(board.ID, inputs)
		if err := repo.CreateImages(ctx, images); err != nil {
			return err
		}
		board.Images = images
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create wishboard")
	}
	return OwnerView(board), nil
}

func (s *service) Get(ctx context.Context, id string, requesterID *uuid.UUID) (*WishboardDTO, error) {
	board, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if requesterID != nil && board.UserID == *requesterID {
		return OwnerView(board), nil
	}
	return PublicView(board), nil
}

func (s *service) Update(ctx context.Context, id string, requesterID uuid.UUID, req UpdateRequest) (*WishboardDTO, error) {
	board, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	var inputs []ImageInput
	if req.Images != nil {
		if inputs, err = normalizeImages(*req.Images); err != nil {
			return nil, err
		}
	}

	name := board.Name
	if req.Name != nil {
		if trimmed := clean(*req.Name, maxNameLength); trimmed != "" {
			name = trimmed
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateName(ctx, board.ID, name, s.now().UTC()); err != nil {
			return err
		}
		if req.Images == nil {
			return nil
		}
		if err := repo.DeleteImages(ctx, board.ID); err != nil {
			return err
		}
		return repo.CreateImages(ctx, buildImages(board.ID, inputs))
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update wishboard")
	}

	updated, err := s.repo.FindByID(ctx, board.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload wishboard")
	}
	return OwnerView(updated), nil
}

func (s *service) Delete(ctx context.Context, id string, requesterID uuid.UUID) error {
	board, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return err
	}
	var deleted int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteImages(ctx, board.ID); err != nil {
			return err
		}
		n, err := repo.Delete(ctx, board.ID)
		deleted = n
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete wishboard")
	}
	if deleted == 0 {
		// removed by a concurrent request between load and delete
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return nil
}

func (s *service) load(ctx context.Context, rawID string) (*models.Wishboard, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	board, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishboard")
	}
	return board, nil
}

func (s *service) loadOwned(ctx context.Context, rawID string, requesterID uuid.UUID) (*models.Wishboard, error) {
	board, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if board.UserID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthorizedMessage)
	}
	return board, nil
}

func normalizeName(raw string) string {
	if name := clean(raw, maxNameLength); name != "" {
		return name
	}
	return models.DefaultWishboardName
}

func normalizeImages(in []ImageInput) ([]ImageInput, error) {
	out := make([]ImageInput, 0, len(in))
	details := map[string]string{}
	for i, img := range in {
		url := strings.TrimSpace(img.URL)
		switch {
		case url == "":
			details[fmt.Sprintf("images[%d].url", i)] = "is required"
		case len(url) > maxURLLength:
			details[fmt.Sprintf("images[%d].url", i)] = fmt.Sprintf("must be at most %d", maxURLLength)
		}
		out = append(out, ImageInput{
			URL:     url,
			Caption: cleanOptional(img.Caption, maxCaptionLength),
		})
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidDataMessage).WithDetails(details)
	}
	return out, nil
}

func buildImages(wishboardID uuid.UUID, inputs []ImageInput) []models.Image {
	images := make([]models.Image, 0, len(inputs))
	for i, in := range inputs {
		images = append(images, models.Image{
			ID:          uuid.New(),
			URL:         in.URL,
			Caption:     in.Caption,
			WishboardID: wishboardID,
			Position:    i,
		})
	}
	return images
}

// clean trims s and truncates it to max runes.
func clean(s string, max int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); max > 0 && len(r) > max {
		s = strings.TrimSpace(string(r[:max]))
	}
	return s
}

func cleanOptional(s *string, max int) *string {
	if s == nil {
		return nil
	}
	if c := clean(*s, max); c != "" {
		return &c
	}
	return nil
}
