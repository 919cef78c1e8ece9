package model

import "time"

// Department uses a numeric id because it is embedded in request numbers (SD{id}-...)
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"code" validate:"required,max=20"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
