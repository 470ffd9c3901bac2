package services

import (
	"time"

	"skillbridge_backend/internal/auth"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/repositories"
	"skillbridge_backend/internal/services/dto"
	"skillbridge_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	GetMe(db *gorm.DB, userID string) (*dto.UserDTO, error)
}

// refreshTokenTTL - срок жизни refresh-токена
const refreshTokenTTL = 7 * 24 * time.Hour

type AuthServiceImpl struct {
	repos RepositoryFactory
}

func NewAuthService(repos RepositoryFactory) AuthService {
	return &AuthServiceImpl{repos: repos}
}

// Register - регистрация нового пользователя.
// Роль admin через регистрацию получить нельзя, первый админ
// создается при старте приложения из конфига.
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	switch req.Role {
	case models.UserRoleLearner, models.UserRoleInstructor, models.UserRoleEmployer:
	default:
		return nil, apperrors.ErrInvalidUserRole
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FullName:     req.FullName,
		Role:         req.Role,
		Status:       models.UserStatusActive,
		Phone:        req.Phone,
	}

	if err := s.repos.Users(db).Create(user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	return s.issueTokens(db, user)
}

// Login - аутентификация пользователя
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repos.Users(db).FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	return s.issueTokens(db, user)
}

// Refresh - обмен refresh-токена на новую пару токенов.
// Старый токен отзывается, токен не переживает больше одного обмена.
func (s *AuthServiceImpl) Refresh(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	tokenRepo := s.repos.RefreshTokens(db)

	token, err := tokenRepo.FindByToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if time.Now().After(token.ExpiresAt) {
		_ = tokenRepo.DeleteByToken(refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.repos.Users(db).FindByID(token.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	if err := tokenRepo.DeleteByToken(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.issueTokens(db, user)
}

// Logout - отзыв refresh-токена
func (s *AuthServiceImpl) Logout(db *gorm.DB, refreshToken string) error {
	if err := s.repos.RefreshTokens(db).DeleteByToken(refreshToken); err != nil {
		if apperrors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// issueTokens выдает access-токен и свежий refresh-токен
func (s *AuthServiceImpl) issueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken := &models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.repos.RefreshTokens(db).Create(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		User:         dto.NewUserDTO(user),
	}, nil
}

// GetMe - данные текущего пользователя
func (s *AuthServiceImpl) GetMe(db *gorm.DB, userID string) (*dto.UserDTO, error) {
	user, err := s.repos.Users(db).FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	userDTO := dto.NewUserDTO(user)
	return &userDTO, nil
}

// checkUserStatus - заблокированные пользователи не проходят login
func checkUserStatus(user *models.User) error {
	switch user.Status {
	case models.UserStatusSuspended:
		return apperrors.ErrUserSuspended
	case models.UserStatusBanned:
		return apperrors.ErrUserBanned
	}
	return nil
}
