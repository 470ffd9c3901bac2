package services

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/repositories"
	"skillbridge_backend/internal/services/dto"
	"skillbridge_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// =========================================================================
// Моки
// =========================================================================

type mockPurchaseRepo struct{ mock.Mock }

func (m *mockPurchaseRepo) Create(purchase *models.Purchase) error {
	return m.Called(purchase).Error(0)
}

func (m *mockPurchaseRepo) FindByID(id string) (*models.Purchase, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *mockPurchaseRepo) FindActiveByUserAndCourse(userID, courseID string) (*models.Purchase, error) {
	args := m.Called(userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *mockPurchaseRepo) FindByUser(userID string) ([]models.Purchase, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Purchase), args.Error(1)
}

func (m *mockPurchaseRepo) FindPending(limit, offset int) ([]models.Purchase, int64, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]models.Purchase), args.Get(1).(int64), args.Error(2)
}

func (m *mockPurchaseRepo) Decide(purchaseID string, status models.PurchaseStatus, adminID string, note string) error {
	return m.Called(purchaseID, status, adminID, note).Error(0)
}

func (m *mockPurchaseRepo) HasApprovedPurchase(userID, courseID string) (bool, error) {
	args := m.Called(userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPurchaseRepo) CountByStatus(status models.PurchaseStatus) (int64, error) {
	args := m.Called(status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPurchaseRepo) SumApprovedAmount() (float64, error) {
	args := m.Called()
	return args.Get(0).(float64), args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) FindByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Create(user *models.User) error { return m.Called(user).Error(0) }
func (m *mockUserRepo) Update(user *models.User) error { return m.Called(user).Error(0) }

func (m *mockUserRepo) UpdateStatus(userID string, status models.UserStatus) error {
	return m.Called(userID, status).Error(0)
}

func (m *mockUserRepo) UpdateRole(userID string, role models.UserRole) error {
	return m.Called(userID, role).Error(0)
}

func (m *mockUserRepo) UpdateCVPath(userID string, cvPath string) error {
	return m.Called(userID, cvPath).Error(0)
}

func (m *mockUserRepo) Delete(userID string) error { return m.Called(userID).Error(0) }

func (m *mockUserRepo) FindWithFilter(criteria repositories.UserFilter) ([]models.User, int64, error) {
	args := m.Called(criteria)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) CountAll() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) CountByRole(role models.UserRole) (int64, error) {
	args := m.Called(role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) CountByRoleSince(role models.UserRole, since time.Time) (int64, error) {
	args := m.Called(role, since)
	return args.Get(0).(int64), args.Error(1)
}

type mockCourseRepo struct{ mock.Mock }

func (m *mockCourseRepo) Create(course *models.Course) error { return m.Called(course).Error(0) }

func (m *mockCourseRepo) FindByID(id string) (*models.Course, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *mockCourseRepo) Update(course *models.Course) error { return m.Called(course).Error(0) }

func (m *mockCourseRepo) UpdateStatus(courseID string, status models.CourseStatus) error {
	return m.Called(courseID, status).Error(0)
}

func (m *mockCourseRepo) UpdateMaterialPath(courseID string, path string) error {
	return m.Called(courseID, path).Error(0)
}

func (m *mockCourseRepo) Delete(courseID string) error { return m.Called(courseID).Error(0) }

func (m *mockCourseRepo) FindWithFilter(criteria repositories.CourseFilter) ([]models.Course, int64, error) {
	args := m.Called(criteria)
	return args.Get(0).([]models.Course), args.Get(1).(int64), args.Error(2)
}

func (m *mockCourseRepo) FindByInstructor(instructorID string) ([]models.Course, error) {
	args := m.Called(instructorID)
	return args.Get(0).([]models.Course), args.Error(1)
}

func (m *mockCourseRepo) CountByStatus(status models.CourseStatus) (int64, error) {
	args := m.Called(status)
	return args.Get(0).(int64), args.Error(1)
}

type mockUploadService struct{ mock.Mock }

func (m *mockUploadService) SaveFile(ctx context.Context, db *gorm.DB, userID string, kind models.UploadKind, file *multipart.FileHeader) (*models.Upload, error) {
	args := m.Called(ctx, db, userID, kind, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Upload), args.Error(1)
}

func (m *mockUploadService) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockUploadService) Remove(ctx context.Context, db *gorm.DB, path string) error {
	args := m.Called(ctx, db, path)
	return args.Error(0)
}

// mockRepoFactory отдает заранее подготовленные моки вместо GORM-репозиториев
type mockRepoFactory struct {
	purchases *mockPurchaseRepo
	courses   *mockCourseRepo
	users     *mockUserRepo
}

func (f *mockRepoFactory) Users(db *gorm.DB) repositories.UserRepository { return f.users }
func (f *mockRepoFactory) Courses(db *gorm.DB) repositories.CourseRepository {
	return f.courses
}
func (f *mockRepoFactory) Purchases(db *gorm.DB) repositories.PurchaseRepository {
	return f.purchases
}
func (f *mockRepoFactory) Jobs(db *gorm.DB) repositories.JobRepository                 { return nil }
func (f *mockRepoFactory) Applications(db *gorm.DB) repositories.ApplicationRepository { return nil }
func (f *mockRepoFactory) Uploads(db *gorm.DB) repositories.UploadRepository           { return nil }
func (f *mockRepoFactory) RefreshTokens(db *gorm.DB) repositories.RefreshTokenRepository {
	return nil
}

// =========================================================================
// Фикстуры
// =========================================================================

const (
	testUserID     = "11111111-aaaa-bbbb-cccc-000000000001"
	testAdminID    = "22222222-aaaa-bbbb-cccc-000000000002"
	testCourseID   = "33333333-aaaa-bbbb-cccc-000000000003"
	testPurchaseID = "44444444-aaaa-bbbb-cccc-000000000004"
)

func testConfig(autoApprove bool) *config.Config {
	cfg := &config.Config{}
	cfg.Payments.AutoApprove = autoApprove
	cfg.Payments.Currency = "ETB"
	cfg.Payments.BankName = "Commercial Bank of Ethiopia"
	cfg.Payments.BankAccount = "1000123456789"
	return cfg
}

func activeCourse() *models.Course {
	return &models.Course{
		BaseModel: models.BaseModel{ID: testCourseID},
		Title:     "Go для начинающих",
		Price:     1800,
		Currency:  "ETB",
		Status:    models.CourseStatusActive,
	}
}

func activeAdmin() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: testAdminID},
		Role:      models.UserRoleAdmin,
		Status:    models.UserStatusActive,
	}
}

func newTestPurchaseService(autoApprove bool) (PurchaseService, *mockPurchaseRepo, *mockCourseRepo, *mockUploadService, *mockUserRepo) {
	purchases := &mockPurchaseRepo{}
	courses := &mockCourseRepo{}
	uploads := &mockUploadService{}
	users := &mockUserRepo{}
	factory := &mockRepoFactory{purchases: purchases, courses: courses, users: users}

	svc := NewPurchaseService(factory, uploads, testConfig(autoApprove))
	return svc, purchases, courses, uploads, users
}

// =========================================================================
// SubmitPurchase
// =========================================================================

func TestSubmitPurchase_NilReceiptRejected(t *testing.T) {
	svc, _, _, _, _ := newTestPurchaseService(false)

	_, err := svc.SubmitPurchase(context.Background(), nil, testUserID, testCourseID, nil)

	assert.ErrorIs(t, err, apperrors.ErrReceiptRequired)
}

func TestSubmitPurchase_AmountTakenFromCourse(t *testing.T) {
	svc, purchases, courses, uploads, _ := newTestPurchaseService(false)

	courses.On("FindByID", testCourseID).Return(activeCourse(), nil)
	purchases.On("FindActiveByUserAndCourse", testUserID, testCourseID).
		Return(nil, repositories.ErrPurchaseNotFound)
	uploads.On("SaveFile", mock.Anything, mock.Anything, testUserID, models.UploadKindReceipt, mock.Anything).
		Return(&models.Upload{Path: "receipt/" + testUserID + "/abc.png"}, nil)

	// Сумма и валюта должны прийти из курса, статус - submitted
	purchases.On("Create", mock.MatchedBy(func(p *models.Purchase) bool {
		return p.Amount == 1800 &&
			p.Currency == "ETB" &&
			p.Status == models.PurchaseStatusSubmitted &&
			p.ReceiptPath != ""
	})).Return(nil)

	receipt := &multipart.FileHeader{Filename: "receipt.png", Size: 100}
	resp, err := svc.SubmitPurchase(context.Background(), nil, testUserID, testCourseID, receipt)

	assert.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusSubmitted, resp.Status)
	assert.Equal(t, 1800.0, resp.Amount)
	purchases.AssertExpectations(t)
}

func TestSubmitPurchase_DuplicateBlocked(t *testing.T) {
	svc, purchases, courses, _, _ := newTestPurchaseService(false)

	courses.On("FindByID", testCourseID).Return(activeCourse(), nil)
	purchases.On("FindActiveByUserAndCourse", testUserID, testCourseID).
		Return(&models.Purchase{Status: models.PurchaseStatusSubmitted}, nil)

	receipt := &multipart.FileHeader{Filename: "receipt.png", Size: 100}
	_, err := svc.SubmitPurchase(context.Background(), nil, testUserID, testCourseID, receipt)

	assert.ErrorIs(t, err, apperrors.ErrDuplicatePurchase)
	purchases.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSubmitPurchase_InactiveCourse(t *testing.T) {
	svc, _, courses, _, _ := newTestPurchaseService(false)

	draft := activeCourse()
	draft.Status = models.CourseStatusDraft
	courses.On("FindByID", testCourseID).Return(draft, nil)

	receipt := &multipart.FileHeader{Filename: "receipt.png", Size: 100}
	_, err := svc.SubmitPurchase(context.Background(), nil, testUserID, testCourseID, receipt)

	assert.ErrorIs(t, err, apperrors.ErrCourseNotActive)
}

func TestSubmitPurchase_AutoApprove(t *testing.T) {
	svc, purchases, courses, uploads, _ := newTestPurchaseService(true)

	courses.On("FindByID", testCourseID).Return(activeCourse(), nil)
	purchases.On("FindActiveByUserAndCourse", testUserID, testCourseID).
		Return(nil, repositories.ErrPurchaseNotFound)
	uploads.On("SaveFile", mock.Anything, mock.Anything, testUserID, models.UploadKindReceipt, mock.Anything).
		Return(&models.Upload{Path: "receipt/x.png"}, nil)
	purchases.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Purchase).ID = testPurchaseID
	}).Return(nil)

	// В self-service режиме сразу за созданием следует approve
	purchases.On("Decide", testPurchaseID, models.PurchaseStatusApproved, testUserID, "auto-approved").
		Return(nil)

	now := time.Now()
	purchases.On("FindByID", testPurchaseID).Return(&models.Purchase{
		BaseModel:  models.BaseModel{ID: testPurchaseID},
		UserID:     testUserID,
		CourseID:   testCourseID,
		Amount:     1800,
		Status:     models.PurchaseStatusApproved,
		VerifiedAt: &now,
	}, nil)

	receipt := &multipart.FileHeader{Filename: "receipt.png", Size: 100}
	resp, err := svc.SubmitPurchase(context.Background(), nil, testUserID, testCourseID, receipt)

	assert.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusApproved, resp.Status)
	purchases.AssertExpectations(t)
}

// TestSubmitPurchase_RaceCaughtByIndex - две параллельные подачи: обе
// проходят предварительную проверку до вставки, вторую вставку
// отклоняет уникальный индекс uniq_active_purchase
func TestSubmitPurchase_RaceCaughtByIndex(t *testing.T) {
	svc, purchases, courses, uploads, _ := newTestPurchaseService(false)

	courses.On("FindByID", testCourseID).Return(activeCourse(), nil)
	purchases.On("FindActiveByUserAndCourse", testUserID, testCourseID).
		Return(nil, repositories.ErrPurchaseNotFound)
	uploads.On("SaveFile", mock.Anything, mock.Anything, testUserID, models.UploadKindReceipt, mock.Anything).
		Return(&models.Upload{Path: "receipt/" + testUserID + "/abc.png"}, nil)
	purchases.On("Create", mock.Anything).Return(repositories.ErrDuplicateActivePurchase)

	receipt := &multipart.FileHeader{Filename: "receipt.png", Size: 100}
	_, err := svc.SubmitPurchase(context.Background(), nil, testUserID, testCourseID, receipt)

	assert.ErrorIs(t, err, apperrors.ErrDuplicatePurchase)
}

// =========================================================================
// Decide
// =========================================================================

func TestDecide_Approve(t *testing.T) {
	svc, purchases, _, _, users := newTestPurchaseService(false)

	users.On("FindByID", testAdminID).Return(activeAdmin(), nil)
	purchases.On("Decide", testPurchaseID, models.PurchaseStatusApproved, testAdminID, "ok").
		Return(nil)

	verifiedBy := testAdminID
	purchases.On("FindByID", testPurchaseID).Return(&models.Purchase{
		BaseModel:  models.BaseModel{ID: testPurchaseID},
		UserID:     testUserID,
		CourseID:   testCourseID,
		Status:     models.PurchaseStatusApproved,
		VerifiedBy: &verifiedBy,
	}, nil)

	resp, err := svc.Decide(context.Background(), nil, testAdminID, testPurchaseID,
		&dto.DecidePurchaseRequest{Decision: "approved", Note: "ok"})

	assert.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusApproved, resp.Status)
	assert.Equal(t, testAdminID, *resp.VerifiedBy)
}

func TestDecide_InvalidDecision(t *testing.T) {
	svc, purchases, _, _, _ := newTestPurchaseService(false)

	_, err := svc.Decide(context.Background(), nil, testAdminID, testPurchaseID,
		&dto.DecidePurchaseRequest{Decision: "maybe"})

	assert.Error(t, err)
	purchases.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestDecide_AlreadyDecided - проигравший гонку UPDATE получает 409,
// а не перезаписывает чужое решение
func TestDecide_AlreadyDecided(t *testing.T) {
	svc, purchases, _, _, users := newTestPurchaseService(false)

	users.On("FindByID", testAdminID).Return(activeAdmin(), nil)
	purchases.On("Decide", testPurchaseID, models.PurchaseStatusRejected, testAdminID, "").
		Return(repositories.ErrPurchaseNotPending)

	// Покупка существует, но уже approved
	purchases.On("FindByID", testPurchaseID).Return(&models.Purchase{
		BaseModel: models.BaseModel{ID: testPurchaseID},
		Status:    models.PurchaseStatusApproved,
	}, nil)

	_, err := svc.Decide(context.Background(), nil, testAdminID, testPurchaseID,
		&dto.DecidePurchaseRequest{Decision: "rejected"})

	assert.ErrorIs(t, err, apperrors.ErrPurchaseAlreadyDecided)
}

// TestDecide_NotFound - несуществующая покупка дает 404, а не 409
func TestDecide_NotFound(t *testing.T) {
	svc, purchases, _, _, users := newTestPurchaseService(false)

	users.On("FindByID", testAdminID).Return(activeAdmin(), nil)
	purchases.On("Decide", testPurchaseID, models.PurchaseStatusApproved, testAdminID, "").
		Return(repositories.ErrPurchaseNotPending)
	purchases.On("FindByID", testPurchaseID).Return(nil, repositories.ErrPurchaseNotFound)

	_, err := svc.Decide(context.Background(), nil, testAdminID, testPurchaseID,
		&dto.DecidePurchaseRequest{Decision: "approved"})

	var appErr *apperrors.AppError
	assert.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)
}

// TestDecide_NonAdminCallerRejected - право на решение сверяется с
// записью пользователя в БД, токен с ролью admin сам по себе не дает
// доступа
func TestDecide_NonAdminCallerRejected(t *testing.T) {
	svc, purchases, _, _, users := newTestPurchaseService(false)

	users.On("FindByID", testUserID).Return(&models.User{
		BaseModel: models.BaseModel{ID: testUserID},
		Role:      models.UserRoleLearner,
		Status:    models.UserStatusActive,
	}, nil)

	_, err := svc.Decide(context.Background(), nil, testUserID, testPurchaseID,
		&dto.DecidePurchaseRequest{Decision: "approved"})

	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
	purchases.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestDecide_SuspendedAdminRejected - заблокированный админ теряет
// право решения сразу, не дожидаясь истечения токена
func TestDecide_SuspendedAdminRejected(t *testing.T) {
	svc, purchases, _, _, users := newTestPurchaseService(false)

	suspended := activeAdmin()
	suspended.Status = models.UserStatusSuspended
	users.On("FindByID", testAdminID).Return(suspended, nil)

	_, err := svc.Decide(context.Background(), nil, testAdminID, testPurchaseID,
		&dto.DecidePurchaseRequest{Decision: "rejected"})

	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
	purchases.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestDecide_ConcurrentOnlyOneWins - два одновременных решения по одной
// покупке: условный UPDATE пропускает ровно одно, второе получает 409
func TestDecide_ConcurrentOnlyOneWins(t *testing.T) {
	svc, purchases, _, _, users := newTestPurchaseService(false)

	users.On("FindByID", testAdminID).Return(activeAdmin(), nil)

	// Первый UPDATE затрагивает строку, второй уже не находит её
	// в статусе submitted
	purchases.On("Decide", testPurchaseID, models.PurchaseStatusApproved, testAdminID, "").
		Return(nil).Once()
	purchases.On("Decide", testPurchaseID, models.PurchaseStatusApproved, testAdminID, "").
		Return(repositories.ErrPurchaseNotPending)
	purchases.On("FindByID", testPurchaseID).Return(&models.Purchase{
		BaseModel: models.BaseModel{ID: testPurchaseID},
		Status:    models.PurchaseStatusApproved,
	}, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Decide(context.Background(), nil, testAdminID, testPurchaseID,
				&dto.DecidePurchaseRequest{Decision: "approved"})
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, apperrors.ErrPurchaseAlreadyDecided):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)
}

// =========================================================================
// Прочее
// =========================================================================

func TestGetPaymentInstructions(t *testing.T) {
	svc, _, courses, _, _ := newTestPurchaseService(false)

	courses.On("FindByID", testCourseID).Return(activeCourse(), nil)

	instructions, err := svc.GetPaymentInstructions(nil, testUserID, testCourseID)

	assert.NoError(t, err)
	assert.Equal(t, 1800.0, instructions.Amount)
	assert.Equal(t, "Commercial Bank of Ethiopia", instructions.BankName)
	assert.Equal(t, "SB-33333333-11111111", instructions.Reference)
}

func TestHasAccess_DerivedFromLedger(t *testing.T) {
	svc, purchases, _, _, _ := newTestPurchaseService(false)

	purchases.On("HasApprovedPurchase", testUserID, testCourseID).Return(true, nil).Once()
	has, err := svc.HasAccess(nil, testUserID, testCourseID)
	assert.NoError(t, err)
	assert.True(t, has)

	purchases.On("HasApprovedPurchase", testUserID, testCourseID).Return(false, nil).Once()
	has, err = svc.HasAccess(nil, testUserID, testCourseID)
	assert.NoError(t, err)
	assert.False(t, has)
}
