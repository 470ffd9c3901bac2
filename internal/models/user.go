package models

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FullName     string     `gorm:"not null" json:"full_name"`
	Role         UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	Phone        string     `json:"phone,omitempty"`
	Bio          string     `json:"bio,omitempty"`

	// Путь к загруженному резюме. Обязательно для отклика на вакансию.
	CVPath string `gorm:"column:cv_path" json:"cv_path,omitempty"`

	// Relations
	Purchases    []Purchase       `gorm:"foreignKey:UserID" json:"-"`
	Courses      []Course         `gorm:"foreignKey:InstructorID" json:"-"`
	Jobs         []Job            `gorm:"foreignKey:EmployerID" json:"-"`
	Applications []JobApplication `gorm:"foreignKey:ApplicantID" json:"-"`
}
