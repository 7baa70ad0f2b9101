package db

import "time"

type UserModel struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	Email          string  `gorm:"uniqueIndex;not null"`
	PasswordHash   string  `gorm:"not null"`
	Role           string  `gorm:"not null"`
	OrganizationID *string `gorm:"type:uuid;index"`
	IsActive       bool    `gorm:"not null;default:true"`
	CreatedAt      time.Time
}

func (UserModel) TableName() string {
	return "users"
}
