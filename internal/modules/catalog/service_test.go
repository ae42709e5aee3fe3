package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"festreg/internal/domain"
)

type mockCompetitionRepo struct {
	byID    map[int64]*domain.Competition
	created *domain.Competition
	updated *domain.Competition
	deleted []int64
}

func (m *mockCompetitionRepo) Create(ctx context.Context, c *domain.Competition) error {
	c.ID = 1
	m.created = c
	if m.byID == nil {
		m.byID = map[int64]*domain.Competition{}
	}
	m.byID[c.ID] = c
	return nil
}

func (m *mockCompetitionRepo) GetByID(ctx context.Context, id int64) (*domain.Competition, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompetitionRepo) GetAll(ctx context.Context) ([]domain.Competition, error) {
	out := make([]domain.Competition, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCompetitionRepo) Update(ctx context.Context, c *domain.Competition) error {
	if _, ok := m.byID[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.updated = c
	m.byID[c.ID] = c
	return nil
}

func (m *mockCompetitionRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.deleted = append(m.deleted, id)
	delete(m.byID, id)
	return nil
}

func TestCreate_NormalizesCity(t *testing.T) {
	repo := &mockCompetitionRepo{}
	svc := NewService(repo)

	c, err := svc.Create(context.Background(), CompetitionInput{
		Name:  "  Latte Art Throwdown  ",
		Price: 1500,
		City:  " Bengaluru ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Latte Art Throwdown", c.Name)
	assert.Equal(t, "bengaluru", c.City)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(&mockCompetitionRepo{})

	_, err := svc.Create(context.Background(), CompetitionInput{City: "bengaluru", Price: 100})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), CompetitionInput{Name: "Brewers Cup", Price: 100})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), CompetitionInput{Name: "Brewers Cup", City: "bengaluru", Price: -5})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewService(&mockCompetitionRepo{})

	_, err := svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	repo := &mockCompetitionRepo{byID: map[int64]*domain.Competition{
		1: {ID: 1, Name: "Brewers Cup", Price: 2000, City: "bengaluru"},
	}}
	svc := NewService(repo)

	c, err := svc.Update(context.Background(), 1, CompetitionInput{
		Name:             "Brewers Cup",
		Price:            2500,
		PassportRequired: true,
		City:             "Mumbai",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(2500), c.Price)
	assert.Equal(t, "mumbai", c.City)
	assert.True(t, c.PassportRequired)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewService(&mockCompetitionRepo{})

	_, err := svc.Update(context.Background(), 42, CompetitionInput{Name: "x", City: "y", Price: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := &mockCompetitionRepo{byID: map[int64]*domain.Competition{1: {ID: 1}}}
	svc := NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.ErrorIs(t, svc.Delete(context.Background(), 1), ErrNotFound)
}
