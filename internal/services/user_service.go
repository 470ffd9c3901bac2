package services

import (
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/repositories"
	"skillbridge_backend/internal/services/dto"
	"skillbridge_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserDTO, error)
	SetCVPath(db *gorm.DB, userID string, cvPath string) error
	ClearCVPath(db *gorm.DB, userID string) (string, error)

	// Admin operations
	ListUsers(db *gorm.DB, req *dto.ListUsersRequest) ([]dto.UserDTO, int64, error)
	UpdateUserStatus(db *gorm.DB, adminID, userID string, status models.UserStatus) error
	UpdateUserRole(db *gorm.DB, adminID, userID string, role models.UserRole) error
	DeleteUser(db *gorm.DB, adminID, userID string) error
}

type UserServiceImpl struct {
	repos RepositoryFactory
}

func NewUserService(repos RepositoryFactory) UserService {
	return &UserServiceImpl{repos: repos}
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserDTO, error) {
	userRepo := s.repos.Users(db)

	user, err := userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	userDTO := dto.NewUserDTO(user)
	return &userDTO, nil
}

func (s *UserServiceImpl) SetCVPath(db *gorm.DB, userID string, cvPath string) error {
	if err := s.repos.Users(db).UpdateCVPath(userID, cvPath); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// ClearCVPath убирает CV из профиля и возвращает прежний путь,
// чтобы вызывающий мог удалить сам файл
func (s *UserServiceImpl) ClearCVPath(db *gorm.DB, userID string) (string, error) {
	userRepo := s.repos.Users(db)

	user, err := userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return "", apperrors.ErrNotFound(err)
		}
		return "", apperrors.InternalError(err)
	}

	if user.CVPath == "" {
		return "", nil
	}

	if err := userRepo.UpdateCVPath(userID, ""); err != nil {
		return "", apperrors.InternalError(err)
	}
	return user.CVPath, nil
}

// Admin operations

func (s *UserServiceImpl) ListUsers(db *gorm.DB, req *dto.ListUsersRequest) ([]dto.UserDTO, int64, error) {
	users, total, err := s.repos.Users(db).FindWithFilter(repositories.UserFilter{
		Role:     req.Role,
		Status:   req.Status,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	result := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		result = append(result, dto.NewUserDTO(&users[i]))
	}
	return result, total, nil
}

// UpdateUserStatus - блокировка/разблокировка пользователя админом.
// Админ не может изменить статус самому себе, иначе единственный
// админ может заблокировать себя и платформа останется без админов.
func (s *UserServiceImpl) UpdateUserStatus(db *gorm.DB, adminID, userID string, status models.UserStatus) error {
	if adminID == userID {
		return apperrors.ErrCannotModifySelf
	}

	if err := s.repos.Users(db).UpdateStatus(userID, status); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// UpdateUserRole - смена роли аккаунта. Свою роль админ не трогает,
// ограничение то же, что и для статуса.
func (s *UserServiceImpl) UpdateUserRole(db *gorm.DB, adminID, userID string, role models.UserRole) error {
	if adminID == userID {
		return apperrors.ErrCannotModifySelf
	}

	if err := s.repos.Users(db).UpdateRole(userID, role); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserServiceImpl) DeleteUser(db *gorm.DB, adminID, userID string) error {
	if adminID == userID {
		return apperrors.ErrCannotModifySelf
	}

	if err := s.repos.Users(db).Delete(userID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}
