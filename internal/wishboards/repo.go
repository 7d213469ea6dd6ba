package wishboards

import (
	"context"
	"time"

	"github.com/angelmondragon/wishboard-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence helpers for wishboards and their images.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, board *models.Wishboard) error
	CreateImages(ctx context.Context, images []models.Image) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Wishboard, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Wishboard, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string, now time.Time) error
	DeleteImages(ctx context.Context, wishboardID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a wishboards repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC")
}

func (r *repositoryImpl) Create(ctx context.Context, board *models.Wishboard) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(board).Error
}

func (r *repositoryImpl) CreateImages(ctx context.Context, images []models.Image) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Wishboard, error) {
	var board models.Wishboard
	if err := r.db.WithContext(ctx).
		Preload("Images", orderedImages).
		First(&board, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Wishboard, error) {
	var boards []models.Wishboard
	if err := r.db.WithContext(ctx).
		Preload("Images", orderedImages).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *repositoryImpl) UpdateName(ctx context.Context, id uuid.UUID, name string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Wishboard{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"name": name, "updated_at": now}).Error
}

func (r *repositoryImpl) DeleteImages(ctx context.Context, wishboardID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("wishboard_id = ?", wishboardID).
		Delete(&models.Image{}).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Wishboard{})
	return res.RowsAffected, res.Error
}
