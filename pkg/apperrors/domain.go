package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для ошибок бизнес-логики.
Репозитории возвращают sentinel-ошибки, сервисы преобразуют их
в AppError через фабрики ниже.
*/

// =========================================================================
// Фабричные функции
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - фабрика для невалидных статусов (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// =========================================================================
// Auth & User
// =========================================================================

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)

var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"business_logic",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

var ErrUserBanned = New(
	CodeForbidden,
	"auth",
	"Your account has been banned",
	http.StatusForbidden,
)

// ErrCannotModifySelf - админ пытается заблокировать/удалить свой аккаунт
var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// =========================================================================
// Uploads & Files
// =========================================================================

// ErrFileTooLarge - файл превышает максимальный размер.
// Сообщение уточняется через WithDetails (лимит для конкретного типа файла).
var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

// ErrInvalidFileType - MIME-тип файла не разрешен
var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// ErrReceiptRequired - покупка без квитанции невозможна
var ErrReceiptRequired = New(
	CodeValidationFailed,
	"payment",
	"Payment receipt file is required. Upload a JPG, PNG or PDF receipt.",
	http.StatusBadRequest,
)

// ErrCVRequired - отклик на вакансию без CV в профиле
var ErrCVRequired = New(
	CodeInvalidOperation,
	"job",
	"Upload a CV to your profile before applying. PDF or Word document, up to 5MB.",
	http.StatusBadRequest,
)

// =========================================================================
// Purchases & Payments
// =========================================================================

// ErrPurchaseAlreadyDecided - попытка повторного решения по покупке
var ErrPurchaseAlreadyDecided = New(
	CodeInvalidStatus,
	"payment",
	"Purchase has already been decided",
	http.StatusConflict,
)

// ErrDuplicatePurchase - активная покупка этого курса уже существует
var ErrDuplicatePurchase = New(
	CodeConflict,
	"payment",
	"An active purchase for this course already exists",
	http.StatusConflict,
)

// ErrCourseNotActive - курс снят с публикации
var ErrCourseNotActive = New(
	CodeInvalidOperation,
	"course",
	"Course is not active",
	http.StatusBadRequest,
)

// ErrNoCourseAccess - у пользователя нет подтвержденной покупки курса
var ErrNoCourseAccess = New(
	CodeForbidden,
	"course",
	"Course materials are available after your payment is approved",
	http.StatusForbidden,
)

// =========================================================================
// Jobs
// =========================================================================

var ErrJobNotActive = New(
	CodeInvalidOperation,
	"job",
	"Job posting is not active",
	http.StatusBadRequest,
)

var ErrJobDeadlinePassed = New(
	CodeInvalidOperation,
	"job",
	"Application deadline for this job has passed",
	http.StatusBadRequest,
)

var ErrApplicationAlreadyExists = New(
	CodeAlreadyExists,
	"job",
	"You have already applied to this job",
	http.StatusConflict,
)

var ErrCannotApplyToOwnJob = New(
	CodeInvalidOperation,
	"job",
	"Cannot apply to your own job posting",
	http.StatusBadRequest,
)
