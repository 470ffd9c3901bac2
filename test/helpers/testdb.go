package helpers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"testing"
	"time"

	"skillbridge_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateUser создает пользователя в транзакции с автоматическим хешированием пароля
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) error {
	// Сырой пароль хешируем сами, чтобы тесты могли логиниться через API
	if user.PasswordHash != "" && !strings.HasPrefix(user.PasswordHash, "$2a$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("Не удалось хешировать пароль: %v", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	result := db.Create(user)
	if result.Error != nil {
		t.Logf("ОШИБКА: не удалось создать пользователя %s: %v", user.Email, result.Error)
		return result.Error
	}

	return nil
}

// CreateAndLoginUser создает пользователя и логинит его через API
func CreateAndLoginUser(t *testing.T, ts *TestServer, tx *gorm.DB, fullName, email, password string, role models.UserRole) (string, *models.User) {
	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: password, // Сырой пароль
		Role:         role,
	}
	err := CreateUser(t, tx, user)
	assert.NoError(t, err, "Создание тестового пользователя не должно вызывать ошибку")

	loginBody := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", loginBody)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Логин должен быть успешным. Ответ: "+bodyStr)

	var loginResponse struct {
		Token string `json:"access_token"`
	}
	err = json.Unmarshal([]byte(bodyStr), &loginResponse)
	assert.NoError(t, err, "Не удалось распарсить JSON")
	assert.NotEmpty(t, loginResponse.Token, "Токен не должен быть пустым")

	log.Printf("✅ [Helper] Создан и залогинен пользователь %s (Role: %s)", email, role)

	// Восстанавливаем сырой пароль для удобства в тестах
	user.PasswordHash = password

	return loginResponse.Token, user
}

// CreateAndLoginLearner создает студента с уникальным email
func CreateAndLoginLearner(t *testing.T, ts *TestServer, tx *gorm.DB) (string, *models.User) {
	email := fmt.Sprintf("learner_%d@test.com", time.Now().UnixNano())
	return CreateAndLoginUser(t, ts, tx, "Test Learner", email, "password123", models.UserRoleLearner)
}

// CreateAndLoginInstructor создает преподавателя с уникальным email
func CreateAndLoginInstructor(t *testing.T, ts *TestServer, tx *gorm.DB) (string, *models.User) {
	email := fmt.Sprintf("instructor_%d@test.com", time.Now().UnixNano())
	return CreateAndLoginUser(t, ts, tx, "Test Instructor", email, "password123", models.UserRoleInstructor)
}

// CreateAndLoginEmployer создает работодателя с уникальным email
func CreateAndLoginEmployer(t *testing.T, ts *TestServer, tx *gorm.DB) (string, *models.User) {
	email := fmt.Sprintf("employer_%d@test.com", time.Now().UnixNano())
	return CreateAndLoginUser(t, ts, tx, "Test Employer", email, "password123", models.UserRoleEmployer)
}

// CreateAndLoginAdmin создает администратора с уникальным email.
// Через API роль admin получить нельзя, поэтому создаем напрямую в БД.
func CreateAndLoginAdmin(t *testing.T, ts *TestServer, tx *gorm.DB) (string, *models.User) {
	email := fmt.Sprintf("admin_%d@test.com", time.Now().UnixNano())
	return CreateAndLoginUser(t, ts, tx, "Test Admin", email, "password123", models.UserRoleAdmin)
}

// CreateTestCourse создает опубликованный курс в транзакции
func CreateTestCourse(t *testing.T, tx *gorm.DB, instructorID, title string, price float64) models.Course {
	course := models.Course{
		InstructorID:  instructorID,
		Title:         title,
		Description:   "Test course description",
		Category:      "programming",
		Level:         models.CourseLevelBeginner,
		Price:         price,
		Currency:      "ETB",
		DurationWeeks: 8,
		Status:        models.CourseStatusActive,
	}
	if err := tx.Create(&course).Error; err != nil {
		t.Fatalf("Не удалось создать тестовый курс: %v", err)
	}
	return course
}

// CreateTestPurchase создает покупку в заданном статусе напрямую в БД
func CreateTestPurchase(t *testing.T, tx *gorm.DB, userID, courseID string, amount float64, status models.PurchaseStatus) models.Purchase {
	purchase := models.Purchase{
		UserID:      userID,
		CourseID:    courseID,
		Amount:      amount,
		Currency:    "ETB",
		ReceiptPath: fmt.Sprintf("receipt/%s/test-receipt.pdf", userID),
		Status:      status,
	}
	if err := tx.Create(&purchase).Error; err != nil {
		t.Fatalf("Не удалось создать тестовую покупку: %v", err)
	}
	return purchase
}

// CreateTestJob создает активную вакансию в транзакции
func CreateTestJob(t *testing.T, tx *gorm.DB, employerID, title string) models.Job {
	job := models.Job{
		EmployerID:  employerID,
		Title:       title,
		Company:     "Test Company",
		Description: "Test job description",
		Location:    "Addis Ababa",
		JobType:     models.JobTypeFullTime,
		Status:      models.JobStatusActive,
	}
	if err := tx.Create(&job).Error; err != nil {
		t.Fatalf("Не удалось создать тестовую вакансию: %v", err)
	}
	return job
}

// SetUserCV прописывает пользователю путь к CV напрямую в БД
func SetUserCV(t *testing.T, tx *gorm.DB, userID string) {
	cvPath := fmt.Sprintf("cv/%s/test-cv.pdf", userID)
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("cv_path", cvPath).Error; err != nil {
		t.Fatalf("Не удалось прописать CV пользователю: %v", err)
	}
}
