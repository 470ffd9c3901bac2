package dto

import (
	"time"

	"skillbridge_backend/internal/models"
)

// --- Purchase Requests ---

// CreatePurchaseRequest - подача заявки на покупку курса.
// Квитанция приходит multipart-файлом в том же запросе, поэтому
// здесь только form-поля. Сумма не принимается от клиента,
// она всегда берется из цены курса на сервере.
type CreatePurchaseRequest struct {
	UserID   string `form:"-" validate:"-"` // Устанавливается сервером
	CourseID string `form:"course_id" validate:"required,uuid"`
}

// DecidePurchaseRequest - решение администратора по покупке
type DecidePurchaseRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Note     string `json:"note" validate:"omitempty,max=1000"`
}

// ListPendingRequest - пагинация очереди на проверку
type ListPendingRequest struct {
	Page     int `form:"page" validate:"-"`
	PageSize int `form:"page_size" validate:"-"`
}

// --- Purchase Responses ---

type PurchaseResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	CourseID    string                `json:"course_id"`
	CourseTitle string                `json:"course_title,omitempty"`
	UserEmail   string                `json:"user_email,omitempty"`
	UserName    string                `json:"user_name,omitempty"`
	Amount      float64               `json:"amount"`
	Currency    string                `json:"currency"`
	ReceiptPath string                `json:"receipt_path"`
	ReceiptURL  string                `json:"receipt_url,omitempty"`
	Status      models.PurchaseStatus `json:"status"`
	VerifiedBy  *string               `json:"verified_by,omitempty"`
	VerifiedAt  *time.Time            `json:"verified_at,omitempty"`
	Note        string                `json:"note,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

func NewPurchaseResponse(p *models.Purchase) *PurchaseResponse {
	resp := &PurchaseResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		CourseID:    p.CourseID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		ReceiptPath: p.ReceiptPath,
		Status:      p.Status,
		VerifiedBy:  p.VerifiedBy,
		VerifiedAt:  p.VerifiedAt,
		Note:        p.Note,
		CreatedAt:   p.CreatedAt,
	}
	if p.Course != nil {
		resp.CourseTitle = p.Course.Title
	}
	if p.User != nil {
		resp.UserEmail = p.User.Email
		resp.UserName = p.User.FullName
	}
	return resp
}

// PaymentInstructions - банковские реквизиты для перевода
type PaymentInstructions struct {
	BankName    string  `json:"bank_name"`
	BankAccount string  `json:"bank_account"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Reference   string  `json:"reference"`
}
