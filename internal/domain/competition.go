package domain

import "time"

type Competition struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(200);not null" json:"name" validate:"required"`
	Price            float64   `gorm:"not null" json:"price" validate:"gte=0"`
	PassportRequired bool      `gorm:"not null;default:false" json:"passport_required"`
	City             string    `gorm:"type:varchar(100);not null;index" json:"city"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Competition) TableName() string { return "competitions" }
