package handlers

import (
	"net/http"

	"skillbridge_backend/internal/logger"
	"skillbridge_backend/internal/middleware"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/services"
	"skillbridge_backend/internal/services/dto"
	"skillbridge_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	*BaseHandler
	userService   services.UserService
	uploadService services.UploadService
}

func NewProfileHandler(base *BaseHandler, userService services.UserService, uploadService services.UploadService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:   base,
		userService:   userService,
		uploadService: uploadService,
	}
}

func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	profile := r.Group("/profile")
	profile.Use(middleware.AuthMiddleware())
	{
		profile.PUT("", h.UpdateProfile)
		profile.POST("/cv", h.UploadCV)
		profile.DELETE("/cv", h.DeleteCV)
	}
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadCV принимает резюме multipart-файлом в поле "file".
// PDF или Word, до 5MB. Путь сохраняется в профиле и подставляется
// в каждый последующий отклик на вакансию.
func (h *ProfileHandler) UploadCV(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.HandleServiceError(c, apperrors.ErrCVRequired)
		return
	}

	db := h.GetDB(c)

	upload, err := h.uploadService.SaveFile(c.Request.Context(), db, userID, models.UploadKindCV, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if err := h.userService.SetCVPath(db, userID, upload.Path); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "CV uploaded successfully",
		"cv_path": upload.Path,
		"cv_url":  upload.URL,
	})
}

func (h *ProfileHandler) DeleteCV(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	oldPath, err := h.userService.ClearCVPath(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if oldPath != "" {
		// Файл уже отвязан от профиля, ошибка удаления не критична
		if err := h.uploadService.Remove(c.Request.Context(), db, oldPath); err != nil {
			logger.WithError(err).Warn("failed to remove cv file", "path", oldPath)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "CV deleted successfully"})
}
