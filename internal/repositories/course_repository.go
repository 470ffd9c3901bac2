package repositories

import (
	"errors"
	"time"

	"skillbridge_backend/internal/models"

	"gorm.io/gorm"
)

var ErrCourseNotFound = errors.New("course not found")

type CourseRepository interface {
	Create(course *models.Course) error
	FindByID(id string) (*models.Course, error)
	Update(course *models.Course) error
	UpdateStatus(courseID string, status models.CourseStatus) error
	UpdateMaterialPath(courseID string, path string) error
	Delete(courseID string) error

	FindWithFilter(criteria CourseFilter) ([]models.Course, int64, error)
	FindByInstructor(instructorID string) ([]models.Course, error)
	CountByStatus(status models.CourseStatus) (int64, error)
}

type CourseFilter struct {
	Category string
	Level    models.CourseLevel
	Search   string
	// Пустой статус означает "только active" - публичный каталог
	// никогда не видит черновики.
	Status   models.CourseStatus
	Page     int
	PageSize int
}

type CourseRepositoryImpl struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &CourseRepositoryImpl{db: db}
}

func (r *CourseRepositoryImpl) Create(course *models.Course) error {
	return r.db.Create(course).Error
}

func (r *CourseRepositoryImpl) FindByID(id string) (*models.Course, error) {
	var course models.Course
	err := r.db.Preload("Instructor").First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepositoryImpl) Update(course *models.Course) error {
	result := r.db.Model(course).Updates(map[string]interface{}{
		"title":          course.Title,
		"description":    course.Description,
		"category":       course.Category,
		"level":          course.Level,
		"price":          course.Price,
		"duration_weeks": course.DurationWeeks,
		"updated_at":     time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepositoryImpl) UpdateStatus(courseID string, status models.CourseStatus) error {
	result := r.db.Model(&models.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepositoryImpl) UpdateMaterialPath(courseID string, path string) error {
	result := r.db.Model(&models.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"material_path": path,
		"updated_at":    time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepositoryImpl) Delete(courseID string) error {
	result := r.db.Where("id = ?", courseID).Delete(&models.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepositoryImpl) FindWithFilter(criteria CourseFilter) ([]models.Course, int64, error) {
	var courses []models.Course
	query := r.db.Model(&models.Course{})

	status := criteria.Status
	if status == "" {
		status = models.CourseStatusActive
	}
	query = query.Where("status = ?", status)

	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.Level != "" {
		query = query.Where("level = ?", criteria.Level)
	}
	if criteria.Search != "" {
		search := "%" + criteria.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize

	err := query.Preload("Instructor").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&courses).Error

	return courses, total, err
}

func (r *CourseRepositoryImpl) FindByInstructor(instructorID string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Where("instructor_id = ?", instructorID).
		Order("created_at DESC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepositoryImpl) CountByStatus(status models.CourseStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Course{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
