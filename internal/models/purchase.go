package models

import "time"

// Purchase - запись о покупке курса с банковским переводом.
// Доступ к курсу никогда не хранится отдельным флагом,
// он всегда выводится из статуса покупки (approved).
type Purchase struct {
	BaseModel
	UserID   string  `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID string  `gorm:"type:uuid;not null;index" json:"course_id"`
	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"type:varchar(3);default:'ETB'" json:"currency"`

	// Квитанция о банковском переводе, обязательна при создании
	ReceiptPath string `gorm:"not null" json:"receipt_path"`

	Status PurchaseStatus `gorm:"type:varchar(20);not null;default:'submitted';index" json:"status"`

	// Кто и когда вынес решение. Пустые пока покупка в submitted.
	VerifiedBy *string    `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	// Комментарий администратора (обычно причина отклонения)
	Note string `json:"note,omitempty"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// IsDecided - по покупке уже вынесено решение
func (p *Purchase) IsDecided() bool {
	return p.Status != PurchaseStatusSubmitted
}
