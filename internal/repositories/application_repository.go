package repositories

import (
	"errors"
	"time"

	"skillbridge_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound      = errors.New("application not found")
	ErrApplicationAlreadyExists = errors.New("application already exists")
)

type ApplicationRepository interface {
	Create(app *models.JobApplication) error
	FindByID(id string) (*models.JobApplication, error)
	FindByJobAndApplicant(jobID, applicantID string) (*models.JobApplication, error)
	FindByJob(jobID string) ([]models.JobApplication, error)
	FindByApplicant(applicantID string) ([]models.JobApplication, error)
	UpdateStatus(appID string, status models.ApplicationStatus) error
	CountByJob(jobID string) (int64, error)
	ExistsForEmployerByCVPath(cvPath, employerID string) (bool, error)
}

type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) Create(app *models.JobApplication) error {
	var existing models.JobApplication
	if err := r.db.Where("job_id = ? AND applicant_id = ?", app.JobID, app.ApplicantID).
		First(&existing).Error; err == nil {
		return ErrApplicationAlreadyExists
	}

	return r.db.Create(app).Error
}

func (r *ApplicationRepositoryImpl) FindByID(id string) (*models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.Preload("Job").Preload("Applicant").First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByJobAndApplicant(jobID, applicantID string) (*models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.Where("job_id = ? AND applicant_id = ?", jobID, applicantID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByJob(jobID string) ([]models.JobApplication, error) {
	var apps []models.JobApplication
	err := r.db.Preload("Applicant").Where("job_id = ?", jobID).
		Order("created_at ASC").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) FindByApplicant(applicantID string) ([]models.JobApplication, error) {
	var apps []models.JobApplication
	err := r.db.Preload("Job").Where("applicant_id = ?", applicantID).
		Order("created_at DESC").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) UpdateStatus(appID string, status models.ApplicationStatus) error {
	result := r.db.Model(&models.JobApplication{}).Where("id = ?", appID).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) CountByJob(jobID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.JobApplication{}).Where("job_id = ?", jobID).Count(&count).Error
	return count, err
}

// ExistsForEmployerByCVPath проверяет, ссылается ли на этот CV хотя бы
// один отклик на вакансию работодателя. По ней работодатель получает
// доступ к файлу: чужие CV без отклика ему не видны.
func (r *ApplicationRepositoryImpl) ExistsForEmployerByCVPath(cvPath, employerID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.JobApplication{}).
		Joins("JOIN jobs ON jobs.id = job_applications.job_id").
		Where("job_applications.cv_path = ? AND jobs.employer_id = ?", cvPath, employerID).
		Count(&count).Error
	return count > 0, err
}
