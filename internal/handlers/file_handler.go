package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"skillbridge_backend/internal/middleware"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/repositories"
	"skillbridge_backend/internal/storage"
	"skillbridge_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// FileHandler отдает загруженные файлы по ID записи Upload.
// Ни один из видов файлов не публичный: квитанции видят владелец
// и админ, CV - владелец, админ и работодатели, материалы курсов
// отдаются только через курсовой роут с проверкой покупки.
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	files.Use(middleware.AuthMiddleware())
	{
		files.GET("/:uploadId", h.ServeFile)
	}
}

// ServeFile serves a file by upload ID
func (h *FileHandler) ServeFile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	uploadID := c.Param("uploadId")

	upload, err := h.uploadByID(c, uploadID)
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrNotFound(err))
		return
	}

	if !h.canAccess(c, upload, userID, middleware.GetUserRole(c)) {
		apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied"))
		return
	}

	reader, err := h.storage.Get(c.Request.Context(), upload.Path)
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrNotFound(err))
		return
	}
	defer reader.Close()

	c.Header("Content-Type", upload.MimeType)
	c.Header("Content-Length", strconv.FormatInt(upload.Size, 10))
	c.Header("ETag", fmt.Sprintf(`"%s"`, upload.ID))

	if c.Query("download") == "true" {
		filename := filepath.Base(upload.Path)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	} else {
		c.Header("Content-Disposition", "inline")
	}

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Заголовки уже ушли, ответить нечем
		c.Error(err)
	}
}

func (h *FileHandler) uploadByID(c *gin.Context, uploadID string) (*models.Upload, error) {
	return repositories.NewUploadRepository(h.GetDB(c)).FindByID(uploadID)
}

func (h *FileHandler) canAccess(c *gin.Context, upload *models.Upload, userID string, role models.UserRole) bool {
	if upload.UserID == userID || role == models.UserRoleAdmin {
		return true
	}

	// Работодатель видит CV соискателя, только если на этот файл
	// ссылается отклик на одну из его вакансий
	if upload.Kind == models.UploadKindCV && role == models.UserRoleEmployer {
		linked, err := repositories.NewApplicationRepository(h.GetDB(c)).
			ExistsForEmployerByCVPath(upload.Path, userID)
		if err != nil {
			return false
		}
		return linked
	}

	return false
}
