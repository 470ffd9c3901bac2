package repositories

import (
	"errors"
	"time"

	"skillbridge_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrPurchaseNotPending - условный UPDATE не нашел покупку в статусе
	// submitted. Либо её нет, либо решение уже вынесено.
	ErrPurchaseNotPending = errors.New("purchase is not pending")

	// ErrDuplicateActivePurchase - частичный уникальный индекс
	// uniq_active_purchase отклонил вторую активную покупку пары
	// пользователь+курс
	ErrDuplicateActivePurchase = errors.New("active purchase already exists")
)

type PurchaseRepository interface {
	Create(purchase *models.Purchase) error
	FindByID(id string) (*models.Purchase, error)
	FindActiveByUserAndCourse(userID, courseID string) (*models.Purchase, error)
	FindByUser(userID string) ([]models.Purchase, error)
	FindPending(limit, offset int) ([]models.Purchase, int64, error)
	Decide(purchaseID string, status models.PurchaseStatus, adminID string, note string) error
	HasApprovedPurchase(userID, courseID string) (bool, error)
	CountByStatus(status models.PurchaseStatus) (int64, error)
	SumApprovedAmount() (float64, error)
}

type PurchaseRepositoryImpl struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &PurchaseRepositoryImpl{db: db}
}

func (r *PurchaseRepositoryImpl) Create(purchase *models.Purchase) error {
	if err := r.db.Create(purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateActivePurchase
		}
		return err
	}
	return nil
}

func (r *PurchaseRepositoryImpl) FindByID(id string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Preload("User").Preload("Course").First(&purchase, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// FindActiveByUserAndCourse ищет покупку, которая блокирует повторную
// подачу: submitted или approved. Отклоненная покупка не считается,
// после rejected пользователь может подать заново.
func (r *PurchaseRepositoryImpl) FindActiveByUserAndCourse(userID, courseID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Where("user_id = ? AND course_id = ? AND status IN ?",
		userID, courseID,
		[]models.PurchaseStatus{models.PurchaseStatusSubmitted, models.PurchaseStatusApproved}).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepositoryImpl) FindByUser(userID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.Preload("Course").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

// FindPending возвращает очередь на проверку, старые сверху -
// админ разбирает заявки в порядке поступления.
func (r *PurchaseRepositoryImpl) FindPending(limit, offset int) ([]models.Purchase, int64, error) {
	var purchases []models.Purchase

	query := r.db.Model(&models.Purchase{}).Where("status = ?", models.PurchaseStatusSubmitted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").Preload("Course").
		Order("created_at ASC").Limit(limit).Offset(offset).Find(&purchases).Error

	return purchases, total, err
}

// Decide выполняет единственный разрешенный переход статуса.
// Guard по status = 'submitted' в WHERE защищает от гонки двух
// админов: проигравший UPDATE не затронет ни одной строки и
// получит ErrPurchaseNotPending.
func (r *PurchaseRepositoryImpl) Decide(purchaseID string, status models.PurchaseStatus, adminID string, note string) error {
	now := time.Now()
	result := r.db.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", purchaseID, models.PurchaseStatusSubmitted).
		Updates(map[string]interface{}{
			"status":      status,
			"verified_by": adminID,
			"verified_at": now,
			"note":        note,
			"updated_at":  now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPurchaseNotPending
	}
	return nil
}

func (r *PurchaseRepositoryImpl) HasApprovedPurchase(userID, courseID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Purchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?",
			userID, courseID, models.PurchaseStatusApproved).
		Count(&count).Error
	return count > 0, err
}

func (r *PurchaseRepositoryImpl) CountByStatus(status models.PurchaseStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Purchase{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// SumApprovedAmount - суммарная выручка по подтвержденным покупкам
func (r *PurchaseRepositoryImpl) SumApprovedAmount() (float64, error) {
	var sum float64
	err := r.db.Model(&models.Purchase{}).
		Where("status = ?", models.PurchaseStatusApproved).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	return sum, err
}
