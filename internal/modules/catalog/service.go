// Package catalog manages the competition catalog referenced by
// registrations.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"festreg/internal/domain"
)

var (
	ErrNotFound   = errors.New("competition not found")
	ErrValidation = errors.New("validation failed")
)

type competitionRepo interface {
	Create(ctx context.Context, c *domain.Competition) error
	GetByID(ctx context.Context, id int64) (*domain.Competition, error)
	GetAll(ctx context.Context) ([]domain.Competition, error)
	Update(ctx context.Context, c *domain.Competition) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	competitions competitionRepo
}

func NewService(competitions competitionRepo) *Service {
	return &Service{competitions: competitions}
}

type CompetitionInput struct {
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	PassportRequired bool    `json:"passport_required"`
	City             string  `json:"city"`
}

func (in *CompetitionInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	// City is matched case-insensitively everywhere; store it lowercased.
	in.City = strings.ToLower(strings.TrimSpace(in.City))
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.City == "" {
		return fmt.Errorf("%w: city is required", ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CompetitionInput) (*domain.Competition, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c := &domain.Competition{
		Name:             in.Name,
		Price:            in.Price,
		PassportRequired: in.PassportRequired,
		City:             in.City,
	}
	if err := s.competitions.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Competition, error) {
	c, err := s.competitions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) GetAll(ctx context.Context) ([]domain.Competition, error) {
	return s.competitions.GetAll(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, in CompetitionInput) (*domain.Competition, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c := &domain.Competition{
		ID:               id,
		Name:             in.Name,
		Price:            in.Price,
		PassportRequired: in.PassportRequired,
		City:             in.City,
	}
	if err := s.competitions.Update(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.competitions.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.competitions.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
