package dto

import "skillbridge_backend/internal/models"

// UpdateProfileRequest - обновление собственного профиля
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

// ListUsersRequest - фильтры админского списка пользователей
type ListUsersRequest struct {
	Role     models.UserRole   `form:"role" validate:"omitempty,oneof=learner instructor employer admin"`
	Status   models.UserStatus `form:"status" validate:"omitempty,oneof=active suspended banned"`
	Search   string            `form:"search" validate:"omitempty,max=100"`
	Page     int               `form:"page" validate:"-"`
	PageSize int               `form:"page_size" validate:"-"`
}

// UpdateUserStatusRequest - смена статуса пользователя админом
type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active suspended banned"`
}

// UpdateUserRoleRequest - смена роли пользователя админом
type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=learner instructor employer admin"`
}
