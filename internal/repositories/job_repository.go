package repositories

import (
	"errors"
	"time"

	"skillbridge_backend/internal/models"

	"gorm.io/gorm"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepository interface {
	Create(job *models.Job) error
	FindByID(id string) (*models.Job, error)
	Update(job *models.Job) error
	UpdateStatus(jobID string, status models.JobStatus) error
	Delete(jobID string) error
	IncrementViews(jobID string) error

	FindWithFilter(criteria JobFilter) ([]models.Job, int64, error)
	FindByEmployer(employerID string) ([]models.Job, error)
	CountByStatus(status models.JobStatus) (int64, error)
}

type JobFilter struct {
	JobType  models.JobType
	Category string
	Location string
	Search   string
	Page     int
	PageSize int
}

type JobRepositoryImpl struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &JobRepositoryImpl{db: db}
}

func (r *JobRepositoryImpl) Create(job *models.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepositoryImpl) FindByID(id string) (*models.Job, error) {
	var job models.Job
	err := r.db.Preload("Employer").First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) Update(job *models.Job) error {
	result := r.db.Model(job).Updates(map[string]interface{}{
		"title":        job.Title,
		"company":      job.Company,
		"description":  job.Description,
		"location":     job.Location,
		"job_type":     job.JobType,
		"category":     job.Category,
		"salary_min":   job.SalaryMin,
		"salary_max":   job.SalaryMax,
		"requirements": job.Requirements,
		"benefits":     job.Benefits,
		"deadline":     job.Deadline,
		"updated_at":   time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) UpdateStatus(jobID string, status models.JobStatus) error {
	result := r.db.Model(&models.Job{}).Where("id = ?", jobID).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) Delete(jobID string) error {
	result := r.db.Where("id = ?", jobID).Delete(&models.Job{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) IncrementViews(jobID string) error {
	return r.db.Model(&models.Job{}).Where("id = ?", jobID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *JobRepositoryImpl) FindWithFilter(criteria JobFilter) ([]models.Job, int64, error) {
	var jobs []models.Job
	query := r.db.Model(&models.Job{}).Where("status = ?", models.JobStatusActive)

	if criteria.JobType != "" {
		query = query.Where("job_type = ?", criteria.JobType)
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.Location != "" {
		query = query.Where("location ILIKE ?", "%"+criteria.Location+"%")
	}
	if criteria.Search != "" {
		search := "%" + criteria.Search + "%"
		query = query.Where("title ILIKE ? OR company ILIKE ? OR description ILIKE ?", search, search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize

	err := query.Preload("Employer").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&jobs).Error

	return jobs, total, err
}

func (r *JobRepositoryImpl) FindByEmployer(employerID string) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.Where("employer_id = ?", employerID).
		Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) CountByStatus(status models.JobStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Job{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
