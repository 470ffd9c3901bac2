package services

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"

	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/repositories"
	"skillbridge_backend/internal/services/dto"
	"skillbridge_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type CourseService interface {
	CreateCourse(db *gorm.DB, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	UpdateCourse(db *gorm.DB, courseID, requesterID string, req *dto.UpdateCourseRequest) error
	UpdateCourseStatus(db *gorm.DB, courseID, requesterID string, status models.CourseStatus) error
	DeleteCourse(db *gorm.DB, courseID, requesterID string) error

	SearchCourses(db *gorm.DB, requesterID string, req *dto.SearchCoursesRequest) ([]dto.CourseResponse, int64, error)
	GetCourse(db *gorm.DB, courseID, requesterID string) (*dto.CourseResponse, error)
	GetInstructorCourses(db *gorm.DB, instructorID string) ([]dto.CourseResponse, error)

	UploadMaterial(ctx context.Context, db *gorm.DB, courseID, requesterID string, file *multipart.FileHeader) error
	OpenMaterial(ctx context.Context, db *gorm.DB, courseID, requesterID string, requesterRole models.UserRole) (io.ReadCloser, string, error)
}

type CourseServiceImpl struct {
	repos         RepositoryFactory
	uploadService UploadService
}

func NewCourseService(repos RepositoryFactory, uploadService UploadService) CourseService {
	return &CourseServiceImpl{repos: repos, uploadService: uploadService}
}

func (s *CourseServiceImpl) CreateCourse(db *gorm.DB, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	level := req.Level
	if level == "" {
		level = models.CourseLevelBeginner
	}

	course := &models.Course{
		InstructorID:  req.InstructorID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Level:         level,
		Price:         req.Price,
		DurationWeeks: req.DurationWeeks,
		Status:        models.CourseStatusDraft,
	}

	if err := s.repos.Courses(db).Create(course); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return dto.NewCourseResponse(course, false), nil
}

func (s *CourseServiceImpl) UpdateCourse(db *gorm.DB, courseID, requesterID string, req *dto.UpdateCourseRequest) error {
	courseRepo := s.repos.Courses(db)

	course, err := s.findOwnCourse(courseRepo, courseID, requesterID)
	if err != nil {
		return err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.DurationWeeks != nil {
		course.DurationWeeks = *req.DurationWeeks
	}

	if err := courseRepo.Update(course); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *CourseServiceImpl) UpdateCourseStatus(db *gorm.DB, courseID, requesterID string, status models.CourseStatus) error {
	courseRepo := s.repos.Courses(db)

	if _, err := s.findOwnCourse(courseRepo, courseID, requesterID); err != nil {
		return err
	}

	if err := courseRepo.UpdateStatus(courseID, status); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *CourseServiceImpl) DeleteCourse(db *gorm.DB, courseID, requesterID string) error {
	courseRepo := s.repos.Courses(db)

	if _, err := s.findOwnCourse(courseRepo, courseID, requesterID); err != nil {
		return err
	}

	if err := courseRepo.Delete(courseID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// SearchCourses - публичный каталог активных курсов.
// Для авторизованного пользователя каждый курс аннотируется
// вычисленным hasAccess.
func (s *CourseServiceImpl) SearchCourses(db *gorm.DB, requesterID string, req *dto.SearchCoursesRequest) ([]dto.CourseResponse, int64, error) {
	courses, total, err := s.repos.Courses(db).FindWithFilter(repositories.CourseFilter{
		Category: req.Category,
		Level:    req.Level,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	purchaseRepo := s.repos.Purchases(db)

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		hasAccess := false
		if requesterID != "" {
			hasAccess, err = purchaseRepo.HasApprovedPurchase(requesterID, courses[i].ID)
			if err != nil {
				return nil, 0, apperrors.InternalError(err)
			}
		}
		result = append(result, *dto.NewCourseResponse(&courses[i], hasAccess))
	}
	return result, total, nil
}

func (s *CourseServiceImpl) GetCourse(db *gorm.DB, courseID, requesterID string) (*dto.CourseResponse, error) {
	course, err := s.repos.Courses(db).FindByID(courseID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	// Черновики видны только автору
	if course.Status != models.CourseStatusActive && course.InstructorID != requesterID {
		return nil, apperrors.ErrNotFound(repositories.ErrCourseNotFound)
	}

	hasAccess := false
	if requesterID != "" {
		hasAccess, err = s.repos.Purchases(db).HasApprovedPurchase(requesterID, courseID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return dto.NewCourseResponse(course, hasAccess), nil
}

func (s *CourseServiceImpl) GetInstructorCourses(db *gorm.DB, instructorID string) ([]dto.CourseResponse, error) {
	courses, err := s.repos.Courses(db).FindByInstructor(instructorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *dto.NewCourseResponse(&courses[i], true))
	}
	return result, nil
}

func (s *CourseServiceImpl) UploadMaterial(ctx context.Context, db *gorm.DB, courseID, requesterID string, file *multipart.FileHeader) error {
	courseRepo := s.repos.Courses(db)

	if _, err := s.findOwnCourse(courseRepo, courseID, requesterID); err != nil {
		return err
	}

	upload, err := s.uploadService.SaveFile(ctx, db, requesterID, models.UploadKindMaterial, file)
	if err != nil {
		return err
	}

	if err := courseRepo.UpdateMaterialPath(courseID, upload.Path); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// OpenMaterial отдает материалы курса. Доступ: автор курса, админ,
// либо пользователь с approved покупкой - проверяется по реестру
// покупок на момент запроса.
func (s *CourseServiceImpl) OpenMaterial(ctx context.Context, db *gorm.DB, courseID, requesterID string, requesterRole models.UserRole) (io.ReadCloser, string, error) {
	course, err := s.repos.Courses(db).FindByID(courseID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCourseNotFound) {
			return nil, "", apperrors.ErrNotFound(err)
		}
		return nil, "", apperrors.InternalError(err)
	}

	// Сначала права, потом наличие файла - 404 по материалам не должен
	// подсказывать постороннему, загружены они или нет
	allowed := course.InstructorID == requesterID || requesterRole == models.UserRoleAdmin
	if !allowed {
		hasAccess, err := s.repos.Purchases(db).HasApprovedPurchase(requesterID, courseID)
		if err != nil {
			return nil, "", apperrors.InternalError(err)
		}
		if !hasAccess {
			return nil, "", apperrors.ErrNoCourseAccess
		}
	}

	if course.MaterialPath == "" {
		return nil, "", apperrors.ErrNotFound(repositories.ErrUploadNotFound)
	}

	reader, err := s.uploadService.Open(ctx, course.MaterialPath)
	if err != nil {
		return nil, "", err
	}

	return reader, filepath.Base(course.MaterialPath), nil
}

func (s *CourseServiceImpl) findOwnCourse(courseRepo repositories.CourseRepository, courseID, requesterID string) (*models.Course, error) {
	course, err := courseRepo.FindByID(courseID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if course.InstructorID != requesterID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	return course, nil
}
