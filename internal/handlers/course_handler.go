package handlers

import (
	"io"
	"net/http"

	"skillbridge_backend/internal/logger"

	"skillbridge_backend/internal/middleware"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/services"
	"skillbridge_backend/internal/services/dto"
	"skillbridge_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	*BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(base *BaseHandler, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   base,
		courseService: courseService,
	}
}

func (h *CourseHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Public routes - каталог виден без авторизации
	public := r.Group("/courses")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("", h.SearchCourses)
		public.GET("/:courseId", h.GetCourse)
	}

	// Protected routes - Instructor only
	courses := r.Group("/courses")
	courses.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleInstructor, models.UserRoleAdmin))
	{
		courses.POST("", h.CreateCourse)
		courses.GET("/my", h.GetMyCourses)
		courses.PUT("/:courseId", h.UpdateCourse)
		courses.DELETE("/:courseId", h.DeleteCourse)
		courses.PUT("/:courseId/status", h.UpdateCourseStatus)
		courses.POST("/:courseId/material", h.UploadMaterial)
	}

	// Материалы доступны любому авторизованному с approved покупкой
	material := r.Group("/courses")
	material.Use(middleware.AuthMiddleware())
	{
		material.GET("/:courseId/material", h.DownloadMaterial)
	}
}

// --- Public handlers ---

func (h *CourseHandler) SearchCourses(c *gin.Context) {
	var criteria dto.SearchCoursesRequest
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}
	criteria.Page, criteria.PageSize = ParsePagination(c)

	requesterID := middleware.GetUserID(c)

	courses, total, err := h.courseService.SearchCourses(h.GetDB(c), requesterID, &criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"total":   total,
		"page":    criteria.Page,
	})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID := c.Param("courseId")
	requesterID := middleware.GetUserID(c)

	course, err := h.courseService.GetCourse(h.GetDB(c), courseID, requesterID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// --- Instructor handlers ---

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	instructorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	req.InstructorID = instructorID

	course, err := h.courseService.CreateCourse(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) GetMyCourses(c *gin.Context) {
	instructorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	courses, err := h.courseService.GetInstructorCourses(h.GetDB(c), instructorID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"total":   len(courses),
	})
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	instructorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	courseID := c.Param("courseId")

	var req dto.UpdateCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.courseService.UpdateCourse(h.GetDB(c), courseID, instructorID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course updated successfully"})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	instructorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	courseID := c.Param("courseId")

	if err := h.courseService.DeleteCourse(h.GetDB(c), courseID, instructorID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

func (h *CourseHandler) UpdateCourseStatus(c *gin.Context) {
	instructorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	courseID := c.Param("courseId")

	var req dto.UpdateCourseStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.courseService.UpdateCourseStatus(h.GetDB(c), courseID, instructorID, req.Status); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course status updated successfully"})
}

func (h *CourseHandler) UploadMaterial(c *gin.Context) {
	instructorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	courseID := c.Param("courseId")

	file, err := c.FormFile("file")
	if err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Material file is required"))
		return
	}

	if err := h.courseService.UploadMaterial(c.Request.Context(), h.GetDB(c), courseID, instructorID, file); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Course material uploaded successfully"})
}

// DownloadMaterial стримит материалы курса после проверки доступа
func (h *CourseHandler) DownloadMaterial(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	courseID := c.Param("courseId")

	reader, filename, err := h.courseService.OpenMaterial(c.Request.Context(), h.GetDB(c), courseID, userID, middleware.GetUserRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Заголовки уже ушли, остается только залогировать
		logger.CtxWithError(c.Request.Context(), "failed to stream course material", err, "course_id", courseID)
	}
}
