package dto

import (
	"time"

	"skillbridge_backend/internal/models"
)

// --- Job Requests ---

type CreateJobRequest struct {
	EmployerID   string         `json:"employer_id" validate:"-"` // Устанавливается сервером
	Title        string         `json:"title" validate:"required,min=3,max=150"`
	Company      string         `json:"company" validate:"omitempty,max=150"`
	Description  string         `json:"description" validate:"omitempty,max=10000"`
	Location     string         `json:"location" validate:"omitempty,max=150"`
	JobType      models.JobType `json:"job_type" validate:"required,oneof=full-time part-time contract internship freelance"`
	Category     string         `json:"category" validate:"omitempty,max=100"`
	SalaryMin    *float64       `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax    *float64       `json:"salary_max,omitempty" validate:"omitempty,min=0,gtefield=SalaryMin"`
	Requirements []string       `json:"requirements,omitempty"`
	Benefits     []string       `json:"benefits,omitempty"`
	Deadline     *time.Time     `json:"deadline,omitempty"`
}

type UpdateJobRequest struct {
	Title        *string         `json:"title,omitempty" validate:"omitempty,min=3,max=150"`
	Company      *string         `json:"company,omitempty" validate:"omitempty,max=150"`
	Description  *string         `json:"description,omitempty" validate:"omitempty,max=10000"`
	Location     *string         `json:"location,omitempty" validate:"omitempty,max=150"`
	JobType      *models.JobType `json:"job_type,omitempty" validate:"omitempty,oneof=full-time part-time contract internship freelance"`
	Category     *string         `json:"category,omitempty" validate:"omitempty,max=100"`
	SalaryMin    *float64        `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax    *float64        `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	Requirements []string        `json:"requirements,omitempty"`
	Benefits     []string        `json:"benefits,omitempty"`
	Deadline     *time.Time      `json:"deadline,omitempty"`
}

type UpdateJobStatusRequest struct {
	Status models.JobStatus `json:"status" validate:"required,oneof=draft active closed"`
}

type SearchJobsRequest struct {
	JobType  models.JobType `form:"job_type" validate:"omitempty,oneof=full-time part-time contract internship freelance"`
	Category string         `form:"category" validate:"omitempty,max=100"`
	Location string         `form:"location" validate:"omitempty,max=150"`
	Search   string         `form:"search" validate:"omitempty,max=100"`
	Page     int            `form:"page" validate:"-"`
	PageSize int            `form:"page_size" validate:"-"`
}

// --- Application Requests ---

type CreateApplicationRequest struct {
	ApplicantID string `json:"applicant_id" validate:"-"` // Устанавливается сервером
	JobID       string `json:"job_id" validate:"-"`       // Устанавливается из URL
	CoverLetter string `json:"cover_letter" validate:"omitempty,max=5000"`
}

type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required,oneof=pending reviewing shortlisted rejected hired"`
}

// --- Responses ---

type JobResponse struct {
	ID           string           `json:"id"`
	EmployerID   string           `json:"employer_id"`
	Title        string           `json:"title"`
	Company      string           `json:"company"`
	Description  string           `json:"description"`
	Location     string           `json:"location"`
	JobType      models.JobType   `json:"job_type"`
	Category     string           `json:"category"`
	SalaryMin    *float64         `json:"salary_min,omitempty"`
	SalaryMax    *float64         `json:"salary_max,omitempty"`
	Requirements []string         `json:"requirements"`
	Benefits     []string         `json:"benefits"`
	Deadline     *time.Time       `json:"deadline,omitempty"`
	Status       models.JobStatus `json:"status"`
	Views        int              `json:"views"`
	CreatedAt    time.Time        `json:"created_at"`
}

type ApplicationResponse struct {
	ID          string                   `json:"id"`
	JobID       string                   `json:"job_id"`
	JobTitle    string                   `json:"job_title,omitempty"`
	ApplicantID string                   `json:"applicant_id"`
	Applicant   string                   `json:"applicant,omitempty"`
	CoverLetter string                   `json:"cover_letter"`
	CVPath      string                   `json:"cv_path"`
	Status      models.ApplicationStatus `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
}

func NewApplicationResponse(a *models.JobApplication) *ApplicationResponse {
	resp := &ApplicationResponse{
		ID:          a.ID,
		JobID:       a.JobID,
		ApplicantID: a.ApplicantID,
		CoverLetter: a.CoverLetter,
		CVPath:      a.CVPath,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
	}
	if a.Job != nil {
		resp.JobTitle = a.Job.Title
	}
	if a.Applicant != nil {
		resp.Applicant = a.Applicant.FullName
	}
	return resp
}
