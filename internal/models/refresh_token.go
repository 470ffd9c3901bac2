package models

import "time"

// RefreshToken - долгоживущий токен сессии. Access-токены живут
// недолго, клиент обменивает refresh-токен на новую пару.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
