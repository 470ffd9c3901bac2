package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/repositories"
	"skillbridge_backend/internal/storage"
	"skillbridge_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UploadService interface {
	// SaveFile валидирует и сохраняет файл, возвращает запись Upload
	SaveFile(ctx context.Context, db *gorm.DB, userID string, kind models.UploadKind, file *multipart.FileHeader) (*models.Upload, error)

	// Open открывает сохраненный файл по пути
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Remove удаляет файл из хранилища вместе с записью Upload
	Remove(ctx context.Context, db *gorm.DB, path string) error
}

// kindPolicy - лимит и разрешенные типы для каждого вида файлов
type kindPolicy struct {
	maxSize      int64
	allowedTypes []string
}

type UploadServiceImpl struct {
	repos    RepositoryFactory
	storage  storage.Storage
	provider string
	policies map[models.UploadKind]kindPolicy
}

func NewUploadService(repos RepositoryFactory, st storage.Storage, cfg *config.Config) UploadService {
	return &UploadServiceImpl{
		repos:    repos,
		storage:  st,
		provider: cfg.Storage.Type,
		policies: map[models.UploadKind]kindPolicy{
			models.UploadKindReceipt: {
				maxSize:      cfg.Upload.ReceiptMaxSize,
				allowedTypes: cfg.Upload.ReceiptTypes,
			},
			models.UploadKindCV: {
				maxSize:      cfg.Upload.CVMaxSize,
				allowedTypes: cfg.Upload.CVTypes,
			},
			models.UploadKindMaterial: {
				maxSize:      cfg.Upload.MaterialMaxSize,
				allowedTypes: cfg.Upload.MaterialTypes,
			},
		},
	}
}

func (s *UploadServiceImpl) SaveFile(ctx context.Context, db *gorm.DB, userID string, kind models.UploadKind, file *multipart.FileHeader) (*models.Upload, error) {
	policy, ok := s.policies[kind]
	if !ok {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown upload kind: %s", kind))
	}

	if err := validateFile(file, policy); err != nil {
		return nil, err
	}

	contentType := file.Header.Get("Content-Type")
	path := buildStoragePath(kind, userID, file.Filename)

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer src.Close()

	if err := s.storage.Save(ctx, path, src, contentType); err != nil {
		return nil, apperrors.StorageError(err)
	}

	url, _ := s.storage.GetURL(ctx, path)

	upload := &models.Upload{
		UserID:          userID,
		Kind:            kind,
		Path:            path,
		OriginalName:    file.Filename,
		MimeType:        contentType,
		Size:            file.Size,
		URL:             url,
		StorageProvider: s.provider,
	}

	if err := s.repos.Uploads(db).Create(upload); err != nil {
		// Запись не создалась - убираем уже сохраненный файл,
		// чтобы не копить сироты в хранилище
		_ = s.storage.Delete(ctx, path)
		return nil, apperrors.InternalError(err)
	}

	return upload, nil
}

func (s *UploadServiceImpl) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	reader, err := s.storage.Get(ctx, path)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	return reader, nil
}

func (s *UploadServiceImpl) Remove(ctx context.Context, db *gorm.DB, path string) error {
	if err := s.storage.Delete(ctx, path); err != nil {
		return apperrors.StorageError(err)
	}

	uploadRepo := s.repos.Uploads(db)
	upload, err := uploadRepo.FindByPath(path)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUploadNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}

	if err := uploadRepo.Delete(upload.ID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func validateFile(file *multipart.FileHeader, policy kindPolicy) error {
	if file.Size > policy.maxSize {
		return apperrors.ErrFileTooLarge.WithDetails(map[string]interface{}{
			"max_size_bytes": policy.maxSize,
			"size_bytes":     file.Size,
		})
	}

	contentType := file.Header.Get("Content-Type")
	for _, allowed := range policy.allowedTypes {
		if contentType == allowed {
			return nil
		}
	}

	return apperrors.ErrInvalidFileType.WithDetails(map[string]interface{}{
		"content_type":  contentType,
		"allowed_types": policy.allowedTypes,
	})
}

// buildStoragePath строит путь вида receipt/<userID>/<random><ext>.
// Случайный суффикс исключает коллизии имен и подбор чужих путей.
func buildStoragePath(kind models.UploadKind, userID, originalName string) string {
	buf := make([]byte, 16)
	rand.Read(buf)

	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s/%s/%s%s", kind, userID, hex.EncodeToString(buf), ext)
}
