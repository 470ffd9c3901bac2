package dto

import (
	"time"

	"skillbridge_backend/internal/models"
)

// --- Course Requests ---

type CreateCourseRequest struct {
	InstructorID  string             `json:"instructor_id" validate:"-"` // Устанавливается сервером
	Title         string             `json:"title" validate:"required,min=3,max=150"`
	Description   string             `json:"description" validate:"omitempty,max=5000"`
	Category      string             `json:"category" validate:"omitempty,max=100"`
	Level         models.CourseLevel `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price         float64            `json:"price" validate:"required,gt=0"`
	DurationWeeks int                `json:"duration_weeks" validate:"omitempty,min=1,max=104"`
}

type UpdateCourseRequest struct {
	Title         *string             `json:"title,omitempty" validate:"omitempty,min=3,max=150"`
	Description   *string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category      *string             `json:"category,omitempty" validate:"omitempty,max=100"`
	Level         *models.CourseLevel `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price         *float64            `json:"price,omitempty" validate:"omitempty,gt=0"`
	DurationWeeks *int                `json:"duration_weeks,omitempty" validate:"omitempty,min=1,max=104"`
}

type UpdateCourseStatusRequest struct {
	Status models.CourseStatus `json:"status" validate:"required,oneof=draft active archived"`
}

type SearchCoursesRequest struct {
	Category string             `form:"category" validate:"omitempty,max=100"`
	Level    models.CourseLevel `form:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Search   string             `form:"search" validate:"omitempty,max=100"`
	Page     int                `form:"page" validate:"-"`
	PageSize int                `form:"page_size" validate:"-"`
}

// --- Course Responses ---

// CourseResponse - курс глазами пользователя.
// HasAccess всегда вычисляется из реестра покупок на момент запроса,
// он нигде не хранится.
type CourseResponse struct {
	ID            string              `json:"id"`
	InstructorID  string              `json:"instructor_id"`
	Instructor    string              `json:"instructor,omitempty"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Level         models.CourseLevel  `json:"level"`
	Price         float64             `json:"price"`
	Currency      string              `json:"currency"`
	DurationWeeks int                 `json:"duration_weeks"`
	Status        models.CourseStatus `json:"status"`
	HasAccess     bool                `json:"has_access"`
	CreatedAt     time.Time           `json:"created_at"`
}

func NewCourseResponse(course *models.Course, hasAccess bool) *CourseResponse {
	resp := &CourseResponse{
		ID:            course.ID,
		InstructorID:  course.InstructorID,
		Title:         course.Title,
		Description:   course.Description,
		Category:      course.Category,
		Level:         course.Level,
		Price:         course.Price,
		Currency:      course.Currency,
		DurationWeeks: course.DurationWeeks,
		Status:        course.Status,
		HasAccess:     hasAccess,
		CreatedAt:     course.CreatedAt,
	}
	if course.Instructor != nil {
		resp.Instructor = course.Instructor.FullName
	}
	return resp
}
