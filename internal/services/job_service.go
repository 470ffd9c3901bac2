package services

import (
	"encoding/json"
	"time"

	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/repositories"
	"skillbridge_backend/internal/services/dto"
	"skillbridge_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobService interface {
	CreateJob(db *gorm.DB, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	UpdateJob(db *gorm.DB, jobID, requesterID string, req *dto.UpdateJobRequest) error
	UpdateJobStatus(db *gorm.DB, jobID, requesterID string, status models.JobStatus) error
	DeleteJob(db *gorm.DB, jobID, requesterID string) error

	SearchJobs(db *gorm.DB, req *dto.SearchJobsRequest) ([]dto.JobResponse, int64, error)
	GetJob(db *gorm.DB, jobID, requesterID string) (*dto.JobResponse, error)
	GetEmployerJobs(db *gorm.DB, employerID string) ([]dto.JobResponse, error)

	Apply(db *gorm.DB, applicantID, jobID string, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error)
	GetJobApplications(db *gorm.DB, jobID, requesterID string) ([]dto.ApplicationResponse, error)
	GetMyApplications(db *gorm.DB, applicantID string) ([]dto.ApplicationResponse, error)
	UpdateApplicationStatus(db *gorm.DB, appID, requesterID string, status models.ApplicationStatus) error
}

type JobServiceImpl struct {
	repos RepositoryFactory
}

func NewJobService(repos RepositoryFactory) JobService {
	return &JobServiceImpl{repos: repos}
}

func (s *JobServiceImpl) CreateJob(db *gorm.DB, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	requirementsJSON, err := json.Marshal(req.Requirements)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	benefitsJSON, err := json.Marshal(req.Benefits)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	job := &models.Job{
		EmployerID:   req.EmployerID,
		Title:        req.Title,
		Company:      req.Company,
		Description:  req.Description,
		Location:     req.Location,
		JobType:      req.JobType,
		Category:     req.Category,
		SalaryMin:    req.SalaryMin,
		SalaryMax:    req.SalaryMax,
		Requirements: datatypes.JSON(requirementsJSON),
		Benefits:     datatypes.JSON(benefitsJSON),
		Deadline:     req.Deadline,
		Status:       models.JobStatusDraft,
	}

	if err := s.repos.Jobs(db).Create(job); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return buildJobResponse(job), nil
}

func (s *JobServiceImpl) UpdateJob(db *gorm.DB, jobID, requesterID string, req *dto.UpdateJobRequest) error {
	jobRepo := s.repos.Jobs(db)

	job, err := s.findOwnJob(jobRepo, jobID, requesterID)
	if err != nil {
		return err
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Company != nil {
		job.Company = *req.Company
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Location != nil {
		job.Location = *req.Location
	}
	if req.JobType != nil {
		job.JobType = *req.JobType
	}
	if req.Category != nil {
		job.Category = *req.Category
	}
	if req.SalaryMin != nil {
		job.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		job.SalaryMax = req.SalaryMax
	}
	if req.Requirements != nil {
		requirementsJSON, err := json.Marshal(req.Requirements)
		if err != nil {
			return apperrors.InternalError(err)
		}
		job.Requirements = datatypes.JSON(requirementsJSON)
	}
	if req.Benefits != nil {
		benefitsJSON, err := json.Marshal(req.Benefits)
		if err != nil {
			return apperrors.InternalError(err)
		}
		job.Benefits = datatypes.JSON(benefitsJSON)
	}
	if req.Deadline != nil {
		job.Deadline = req.Deadline
	}

	if err := jobRepo.Update(job); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *JobServiceImpl) UpdateJobStatus(db *gorm.DB, jobID, requesterID string, status models.JobStatus) error {
	jobRepo := s.repos.Jobs(db)

	if _, err := s.findOwnJob(jobRepo, jobID, requesterID); err != nil {
		return err
	}

	if err := jobRepo.UpdateStatus(jobID, status); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *JobServiceImpl) DeleteJob(db *gorm.DB, jobID, requesterID string) error {
	jobRepo := s.repos.Jobs(db)

	if _, err := s.findOwnJob(jobRepo, jobID, requesterID); err != nil {
		return err
	}

	if err := jobRepo.Delete(jobID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *JobServiceImpl) SearchJobs(db *gorm.DB, req *dto.SearchJobsRequest) ([]dto.JobResponse, int64, error) {
	jobs, total, err := s.repos.Jobs(db).FindWithFilter(repositories.JobFilter{
		JobType:  req.JobType,
		Category: req.Category,
		Location: req.Location,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	result := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		result = append(result, *buildJobResponse(&jobs[i]))
	}
	return result, total, nil
}

func (s *JobServiceImpl) GetJob(db *gorm.DB, jobID, requesterID string) (*dto.JobResponse, error) {
	jobRepo := s.repos.Jobs(db)

	job, err := jobRepo.FindByID(jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if job.Status != models.JobStatusActive && job.EmployerID != requesterID {
		return nil, apperrors.ErrNotFound(repositories.ErrJobNotFound)
	}

	// Счетчик просмотров best-effort, ошибка не блокирует ответ
	if requesterID != job.EmployerID {
		_ = jobRepo.IncrementViews(jobID)
	}

	return buildJobResponse(job), nil
}

func (s *JobServiceImpl) GetEmployerJobs(db *gorm.DB, employerID string) ([]dto.JobResponse, error) {
	jobs, err := s.repos.Jobs(db).FindByEmployer(employerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		result = append(result, *buildJobResponse(&jobs[i]))
	}
	return result, nil
}

// Apply - отклик на вакансию. Требует загруженного в профиль CV:
// отклик без резюме работодателю бесполезен.
func (s *JobServiceImpl) Apply(db *gorm.DB, applicantID, jobID string, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	job, err := s.repos.Jobs(db).FindByID(jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if job.Status != models.JobStatusActive {
		return nil, apperrors.ErrJobNotActive
	}
	if job.Deadline != nil && job.Deadline.Before(time.Now()) {
		return nil, apperrors.ErrJobDeadlinePassed
	}
	if job.EmployerID == applicantID {
		return nil, apperrors.ErrCannotApplyToOwnJob
	}

	applicant, err := s.repos.Users(db).FindByID(applicantID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if applicant.CVPath == "" {
		return nil, apperrors.ErrCVRequired
	}

	app := &models.JobApplication{
		JobID:       jobID,
		ApplicantID: applicantID,
		CoverLetter: req.CoverLetter,
		CVPath:      applicant.CVPath,
		Status:      models.ApplicationStatusPending,
	}

	if err := s.repos.Applications(db).Create(app); err != nil {
		if apperrors.Is(err, repositories.ErrApplicationAlreadyExists) {
			return nil, apperrors.ErrApplicationAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	return dto.NewApplicationResponse(app), nil
}

func (s *JobServiceImpl) GetJobApplications(db *gorm.DB, jobID, requesterID string) ([]dto.ApplicationResponse, error) {
	if _, err := s.findOwnJob(s.repos.Jobs(db), jobID, requesterID); err != nil {
		return nil, err
	}

	apps, err := s.repos.Applications(db).FindByJob(jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, *dto.NewApplicationResponse(&apps[i]))
	}
	return result, nil
}

func (s *JobServiceImpl) GetMyApplications(db *gorm.DB, applicantID string) ([]dto.ApplicationResponse, error) {
	apps, err := s.repos.Applications(db).FindByApplicant(applicantID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, *dto.NewApplicationResponse(&apps[i]))
	}
	return result, nil
}

// UpdateApplicationStatus - работодатель двигает отклик по воронке
func (s *JobServiceImpl) UpdateApplicationStatus(db *gorm.DB, appID, requesterID string, status models.ApplicationStatus) error {
	appRepo := s.repos.Applications(db)

	app, err := appRepo.FindByID(appID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if app.Job == nil || app.Job.EmployerID != requesterID {
		return apperrors.ErrInsufficientPermissions
	}

	if err := appRepo.UpdateStatus(appID, status); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *JobServiceImpl) findOwnJob(jobRepo repositories.JobRepository, jobID, requesterID string) (*models.Job, error) {
	job, err := jobRepo.FindByID(jobID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if job.EmployerID != requesterID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	return job, nil
}

func buildJobResponse(job *models.Job) *dto.JobResponse {
	var requirements, benefits []string
	if len(job.Requirements) > 0 {
		_ = json.Unmarshal(job.Requirements, &requirements)
	}
	if len(job.Benefits) > 0 {
		_ = json.Unmarshal(job.Benefits, &benefits)
	}

	return &dto.JobResponse{
		ID:           job.ID,
		EmployerID:   job.EmployerID,
		Title:        job.Title,
		Company:      job.Company,
		Description:  job.Description,
		Location:     job.Location,
		JobType:      job.JobType,
		Category:     job.Category,
		SalaryMin:    job.SalaryMin,
		SalaryMax:    job.SalaryMax,
		Requirements: requirements,
		Benefits:     benefits,
		Deadline:     job.Deadline,
		Status:       job.Status,
		Views:        job.Views,
		CreatedAt:    job.CreatedAt,
	}
}
