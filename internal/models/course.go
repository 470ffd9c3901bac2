package models

type Course struct {
	BaseModel
	InstructorID  string       `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Title         string       `gorm:"not null" json:"title"`
	Description   string       `json:"description"`
	Category      string       `json:"category"`
	Level         CourseLevel  `gorm:"type:varchar(20);default:'beginner'" json:"level"`
	Price         float64      `gorm:"not null" json:"price"`
	Currency      string       `gorm:"type:varchar(3);default:'ETB'" json:"currency"`
	DurationWeeks int          `json:"duration_weeks"`
	Status        CourseStatus `gorm:"type:varchar(20);default:'draft'" json:"status"`

	// Путь к материалам курса. Отдается только после approved покупки.
	MaterialPath string `gorm:"column:material_path" json:"-"`

	Instructor *User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
}
