package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/logger"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/repositories"
	"skillbridge_backend/internal/services/dto"
	"skillbridge_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type PurchaseService interface {
	// GetPaymentInstructions возвращает реквизиты для банковского перевода
	GetPaymentInstructions(db *gorm.DB, userID, courseID string) (*dto.PaymentInstructions, error)

	// SubmitPurchase создает покупку в статусе submitted с квитанцией
	SubmitPurchase(ctx context.Context, db *gorm.DB, userID, courseID string, receipt *multipart.FileHeader) (*dto.PurchaseResponse, error)

	// GetMyPurchases - покупки текущего пользователя
	GetMyPurchases(db *gorm.DB, userID string) ([]dto.PurchaseResponse, error)

	// GetPurchase - одна покупка, видна владельцу и админу
	GetPurchase(db *gorm.DB, purchaseID, requesterID string, requesterRole models.UserRole) (*dto.PurchaseResponse, error)

	// ListPending - очередь submitted покупок для админа, старые сверху
	ListPending(db *gorm.DB, req *dto.ListPendingRequest) ([]dto.PurchaseResponse, int64, error)

	// Decide - решение админа по покупке, ровно один раз
	Decide(ctx context.Context, db *gorm.DB, adminID, purchaseID string, req *dto.DecidePurchaseRequest) (*dto.PurchaseResponse, error)

	// HasAccess - есть ли у пользователя подтвержденная покупка курса
	HasAccess(db *gorm.DB, userID, courseID string) (bool, error)
}

type PurchaseServiceImpl struct {
	repos         RepositoryFactory
	uploadService UploadService

	// Self-service режим: покупка с квитанцией сразу approved,
	// без участия админа. Управляется payments.auto_approve.
	autoApprove bool

	currency    string
	bankName    string
	bankAccount string
}

func NewPurchaseService(repos RepositoryFactory, uploadService UploadService, cfg *config.Config) PurchaseService {
	return &PurchaseServiceImpl{
		repos:         repos,
		uploadService: uploadService,
		autoApprove:   cfg.Payments.AutoApprove,
		currency:      cfg.Payments.Currency,
		bankName:      cfg.Payments.BankName,
		bankAccount:   cfg.Payments.BankAccount,
	}
}

func (s *PurchaseServiceImpl) GetPaymentInstructions(db *gorm.DB, userID, courseID string) (*dto.PaymentInstructions, error) {
	course, err := s.findActiveCourse(db, courseID)
	if err != nil {
		return nil, err
	}

	return &dto.PaymentInstructions{
		BankName:    s.bankName,
		BankAccount: s.bankAccount,
		Amount:      course.Price,
		Currency:    s.currency,
		Reference:   fmt.Sprintf("SB-%s-%s", courseID[:8], userID[:8]),
	}, nil
}

func (s *PurchaseServiceImpl) SubmitPurchase(ctx context.Context, db *gorm.DB, userID, courseID string, receipt *multipart.FileHeader) (*dto.PurchaseResponse, error) {
	if receipt == nil {
		return nil, apperrors.ErrReceiptRequired
	}

	course, err := s.findActiveCourse(db, courseID)
	if err != nil {
		return nil, err
	}

	// Одна активная покупка на пару пользователь+курс.
	// После rejected можно подать заново.
	purchaseRepo := s.repos.Purchases(db)
	if _, err := purchaseRepo.FindActiveByUserAndCourse(userID, courseID); err == nil {
		return nil, apperrors.ErrDuplicatePurchase
	} else if !apperrors.Is(err, repositories.ErrPurchaseNotFound) {
		return nil, apperrors.InternalError(err)
	}

	upload, err := s.uploadService.SaveFile(ctx, db, userID, models.UploadKindReceipt, receipt)
	if err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		UserID:   userID,
		CourseID: courseID,
		// Сумма всегда из цены курса, клиентской сумме не верим
		Amount:      course.Price,
		Currency:    course.Currency,
		ReceiptPath: upload.Path,
		Status:      models.PurchaseStatusSubmitted,
	}

	if err := purchaseRepo.Create(purchase); err != nil {
		// Конкурентная подача: предварительная проверка выше не атомарна,
		// последнее слово за частичным уникальным индексом в БД
		if apperrors.Is(err, repositories.ErrDuplicateActivePurchase) {
			return nil, apperrors.ErrDuplicatePurchase
		}
		return nil, apperrors.InternalError(err)
	}

	logger.PaymentLog("purchase_submitted", purchase.ID, userID, nil)

	if s.autoApprove {
		if err := purchaseRepo.Decide(purchase.ID, models.PurchaseStatusApproved, userID, "auto-approved"); err != nil {
			return nil, apperrors.InternalError(err)
		}
		logger.PaymentLog("purchase_auto_approved", purchase.ID, userID, nil)

		decided, err := purchaseRepo.FindByID(purchase.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		return dto.NewPurchaseResponse(decided), nil
	}

	purchase.Course = course
	return dto.NewPurchaseResponse(purchase), nil
}

func (s *PurchaseServiceImpl) GetMyPurchases(db *gorm.DB, userID string) ([]dto.PurchaseResponse, error) {
	purchases, err := s.repos.Purchases(db).FindByUser(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		result = append(result, *dto.NewPurchaseResponse(&purchases[i]))
	}
	return result, nil
}

func (s *PurchaseServiceImpl) GetPurchase(db *gorm.DB, purchaseID, requesterID string, requesterRole models.UserRole) (*dto.PurchaseResponse, error) {
	purchase, err := s.repos.Purchases(db).FindByID(purchaseID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPurchaseNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if purchase.UserID != requesterID && requesterRole != models.UserRoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}

	return dto.NewPurchaseResponse(purchase), nil
}

func (s *PurchaseServiceImpl) ListPending(db *gorm.DB, req *dto.ListPendingRequest) ([]dto.PurchaseResponse, int64, error) {
	limit := req.PageSize
	offset := (req.Page - 1) * req.PageSize

	purchases, total, err := s.repos.Purchases(db).FindPending(limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	result := make([]dto.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		result = append(result, *dto.NewPurchaseResponse(&purchases[i]))
	}
	return result, total, nil
}

func (s *PurchaseServiceImpl) Decide(ctx context.Context, db *gorm.DB, adminID, purchaseID string, req *dto.DecidePurchaseRequest) (*dto.PurchaseResponse, error) {
	purchaseRepo := s.repos.Purchases(db)

	status := models.PurchaseStatus(req.Decision)
	if status != models.PurchaseStatusApproved && status != models.PurchaseStatusRejected {
		return nil, apperrors.ErrInvalidOperation("payment", "Decision must be approved or rejected")
	}

	// Права сверяем с текущей записью пользователя, а не с claims
	// токена: разжалованный или заблокированный админ не должен
	// выносить решения, пока его токен не истек
	admin, err := s.repos.Users(db).FindByID(adminID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInsufficientPermissions
		}
		return nil, apperrors.InternalError(err)
	}
	if admin.Role != models.UserRoleAdmin || admin.Status != models.UserStatusActive {
		return nil, apperrors.ErrInsufficientPermissions
	}

	err = purchaseRepo.Decide(purchaseID, status, adminID, req.Note)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPurchaseNotPending) {
			// Либо покупки нет, либо по ней уже вынесено решение.
			// Различаем по отдельному чтению, чтобы отдать честный код.
			if _, findErr := purchaseRepo.FindByID(purchaseID); apperrors.Is(findErr, repositories.ErrPurchaseNotFound) {
				return nil, apperrors.ErrNotFound(findErr)
			}
			return nil, apperrors.ErrPurchaseAlreadyDecided
		}
		logger.PaymentLog("purchase_decision", purchaseID, adminID, err)
		return nil, apperrors.InternalError(err)
	}

	logger.PaymentLog("purchase_"+string(status), purchaseID, adminID, nil)

	purchase, err := purchaseRepo.FindByID(purchaseID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return dto.NewPurchaseResponse(purchase), nil
}

func (s *PurchaseServiceImpl) HasAccess(db *gorm.DB, userID, courseID string) (bool, error) {
	has, err := s.repos.Purchases(db).HasApprovedPurchase(userID, courseID)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	return has, nil
}

// findActiveCourse - курс существует и опубликован
func (s *PurchaseServiceImpl) findActiveCourse(db *gorm.DB, courseID string) (*models.Course, error) {
	course, err := s.repos.Courses(db).FindByID(courseID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if course.Status != models.CourseStatusActive {
		return nil, apperrors.ErrCourseNotActive
	}

	return course, nil
}
