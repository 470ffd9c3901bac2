package services

import (
	"skillbridge_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService     AuthService
	UserService     UserService
	CourseService   CourseService
	PurchaseService PurchaseService
	JobService      JobService
	UploadService   UploadService
	StatsService    StatsService
	Storage         storage.Storage
}
