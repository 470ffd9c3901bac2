package services

import (
	"time"

	"skillbridge_backend/internal/models"
	"skillbridge_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// PlatformStats - сводка для админского дашборда
type PlatformStats struct {
	TotalUsers       int64   `json:"total_users"`
	Learners         int64   `json:"learners"`
	Instructors      int64   `json:"instructors"`
	Employers        int64   `json:"employers"`
	NewUsersThisWeek int64   `json:"new_users_this_week"`
	ActiveCourses    int64   `json:"active_courses"`
	ActiveJobs       int64   `json:"active_jobs"`
	PendingPayments  int64   `json:"pending_payments"`
	ApprovedPayments int64   `json:"approved_payments"`
	RejectedPayments int64   `json:"rejected_payments"`
	TotalRevenue     float64 `json:"total_revenue"`
}

type StatsService interface {
	GetPlatformStats(db *gorm.DB) (*PlatformStats, error)
}

type StatsServiceImpl struct {
	repos RepositoryFactory
}

func NewStatsService(repos RepositoryFactory) StatsService {
	return &StatsServiceImpl{repos: repos}
}

func (s *StatsServiceImpl) GetPlatformStats(db *gorm.DB) (*PlatformStats, error) {
	var stats PlatformStats
	var err error

	userRepo := s.repos.Users(db)
	purchaseRepo := s.repos.Purchases(db)

	if stats.TotalUsers, err = userRepo.CountAll(); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.Learners, err = userRepo.CountByRole(models.UserRoleLearner); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.Instructors, err = userRepo.CountByRole(models.UserRoleInstructor); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.Employers, err = userRepo.CountByRole(models.UserRoleEmployer); err != nil {
		return nil, apperrors.InternalError(err)
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	for _, role := range []models.UserRole{models.UserRoleLearner, models.UserRoleInstructor, models.UserRoleEmployer} {
		count, err := userRepo.CountByRoleSince(role, weekAgo)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		stats.NewUsersThisWeek += count
	}

	if stats.ActiveCourses, err = s.repos.Courses(db).CountByStatus(models.CourseStatusActive); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.ActiveJobs, err = s.repos.Jobs(db).CountByStatus(models.JobStatusActive); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if stats.PendingPayments, err = purchaseRepo.CountByStatus(models.PurchaseStatusSubmitted); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.ApprovedPayments, err = purchaseRepo.CountByStatus(models.PurchaseStatusApproved); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.RejectedPayments, err = purchaseRepo.CountByStatus(models.PurchaseStatusRejected); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.TotalRevenue, err = purchaseRepo.SumApprovedAmount(); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &stats, nil
}
