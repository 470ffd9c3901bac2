package models

import (
	"time"

	"gorm.io/datatypes"
)

type Job struct {
	BaseModel
	EmployerID   string         `gorm:"type:uuid;not null;index" json:"employer_id"`
	Title        string         `gorm:"not null" json:"title"`
	Company      string         `json:"company"`
	Description  string         `json:"description"`
	Location     string         `json:"location"`
	JobType      JobType        `gorm:"type:varchar(20)" json:"job_type"`
	Category     string         `json:"category"`
	SalaryMin    *float64       `json:"salary_min,omitempty"`
	SalaryMax    *float64       `json:"salary_max,omitempty"`
	Requirements datatypes.JSON `gorm:"type:jsonb" json:"requirements"`
	Benefits     datatypes.JSON `gorm:"type:jsonb" json:"benefits"`
	Deadline     *time.Time     `json:"deadline,omitempty"`
	Status       JobStatus      `gorm:"type:varchar(20);default:'draft'" json:"status"`
	Views        int            `json:"views"`

	Employer *User `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
}

type JobApplication struct {
	BaseModel
	JobID       string `gorm:"type:uuid;not null;index" json:"job_id"`
	ApplicantID string `gorm:"type:uuid;not null;index" json:"applicant_id"`
	CoverLetter string `json:"cover_letter"`

	// Снимок пути к CV на момент отклика
	CVPath string `gorm:"column:cv_path;not null" json:"cv_path"`

	Status ApplicationStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	Job       *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Applicant *User `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
}
