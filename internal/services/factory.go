package services

import (
	"skillbridge_backend/internal/repositories"

	"gorm.io/gorm"
)

// RepositoryFactory отвязывает сервисы от конкретных реализаций
// репозиториев. Сервисы получают *gorm.DB на каждый вызов (пул или
// транзакцию из middleware) и строят репозитории через фабрику,
// а unit-тесты подставляют фабрику с моками.
type RepositoryFactory interface {
	Users(db *gorm.DB) repositories.UserRepository
	Courses(db *gorm.DB) repositories.CourseRepository
	Purchases(db *gorm.DB) repositories.PurchaseRepository
	Jobs(db *gorm.DB) repositories.JobRepository
	Applications(db *gorm.DB) repositories.ApplicationRepository
	Uploads(db *gorm.DB) repositories.UploadRepository
	RefreshTokens(db *gorm.DB) repositories.RefreshTokenRepository
}

type gormRepositoryFactory struct{}

// NewRepositoryFactory возвращает фабрику GORM-репозиториев
func NewRepositoryFactory() RepositoryFactory {
	return &gormRepositoryFactory{}
}

func (f *gormRepositoryFactory) Users(db *gorm.DB) repositories.UserRepository {
	return repositories.NewUserRepository(db)
}

func (f *gormRepositoryFactory) Courses(db *gorm.DB) repositories.CourseRepository {
	return repositories.NewCourseRepository(db)
}

func (f *gormRepositoryFactory) Purchases(db *gorm.DB) repositories.PurchaseRepository {
	return repositories.NewPurchaseRepository(db)
}

func (f *gormRepositoryFactory) Jobs(db *gorm.DB) repositories.JobRepository {
	return repositories.NewJobRepository(db)
}

func (f *gormRepositoryFactory) Applications(db *gorm.DB) repositories.ApplicationRepository {
	return repositories.NewApplicationRepository(db)
}

func (f *gormRepositoryFactory) Uploads(db *gorm.DB) repositories.UploadRepository {
	return repositories.NewUploadRepository(db)
}

func (f *gormRepositoryFactory) RefreshTokens(db *gorm.DB) repositories.RefreshTokenRepository {
	return repositories.NewRefreshTokenRepository(db)
}
