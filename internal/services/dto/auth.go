package dto

import (
	"time"

	"skillbridge_backend/internal/models"
)

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	FullName string          `json:"full_name" validate:"required,min=2,max=100"`
	Role     models.UserRole `json:"role" validate:"required,oneof=learner instructor employer"`
	Phone    string          `json:"phone" validate:"omitempty,max=20"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse - ответ с парой токенов
type AuthResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	User         UserDTO `json:"user"`
}

// RefreshRequest - обмен refresh-токена на новую пару, logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserDTO - базовая информация о пользователе
type UserDTO struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	FullName  string            `json:"full_name"`
	Role      models.UserRole   `json:"role"`
	Status    models.UserStatus `json:"status"`
	Phone     string            `json:"phone,omitempty"`
	Bio       string            `json:"bio,omitempty"`
	CVPath    string            `json:"cv_path,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewUserDTO собирает DTO из модели
func NewUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		Status:    user.Status,
		Phone:     user.Phone,
		Bio:       user.Bio,
		CVPath:    user.CVPath,
		CreatedAt: user.CreatedAt,
	}
}
