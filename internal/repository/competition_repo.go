package repository

import (
	"context"

	"gorm.io/gorm"

	"festreg/internal/domain"
)

type CompetitionRepository struct {
	db *gorm.DB
}

func NewCompetitionRepository(db *gorm.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) Create(ctx context.Context, c *domain.Competition) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CompetitionRepository) GetByID(ctx context.Context, id int64) (*domain.Competition, error) {
	var c domain.Competition
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompetitionRepository) GetAll(ctx context.Context) ([]domain.Competition, error) {
	var out []domain.Competition
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CompetitionRepository) Update(ctx context.Context, c *domain.Competition) error {
	res := r.db.WithContext(ctx).Model(&domain.Competition{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"name":              c.Name,
		"price":             c.Price,
		"passport_required": c.PassportRequired,
		"city":              c.City,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CompetitionRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Competition{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
