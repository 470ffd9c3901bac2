package handlers

import (
	"net/http"

	"skillbridge_backend/internal/middleware"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/services"
	"skillbridge_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{
		BaseHandler: base,
		jobService:  jobService,
	}
}

func (h *JobHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Public routes
	public := r.Group("/jobs")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("", h.SearchJobs)
		public.GET("/:jobId", h.GetJob)
	}

	// Protected routes - Employer only
	jobs := r.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleEmployer, models.UserRoleAdmin))
	{
		jobs.POST("", h.CreateJob)
		jobs.GET("/my", h.GetMyJobs)
		jobs.PUT("/:jobId", h.UpdateJob)
		jobs.DELETE("/:jobId", h.DeleteJob)
		jobs.PUT("/:jobId/status", h.UpdateJobStatus)
		jobs.GET("/:jobId/applications", h.GetJobApplications)
	}

	// Protected routes - Learner applications
	applications := r.Group("")
	applications.Use(middleware.AuthMiddleware())
	{
		applications.POST("/jobs/:jobId/applications", h.Apply)
		applications.GET("/applications/my", h.GetMyApplications)
	}

	// Работодатель двигает отклик по воронке
	appStatus := r.Group("/applications")
	appStatus.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleEmployer, models.UserRoleAdmin))
	{
		appStatus.PUT("/:applicationId/status", h.UpdateApplicationStatus)
	}
}

// --- Public handlers ---

func (h *JobHandler) SearchJobs(c *gin.Context) {
	var criteria dto.SearchJobsRequest
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}
	criteria.Page, criteria.PageSize = ParsePagination(c)

	jobs, total, err := h.jobService.SearchJobs(h.GetDB(c), &criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": total,
		"page":  criteria.Page,
	})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	requesterID := middleware.GetUserID(c)

	job, err := h.jobService.GetJob(h.GetDB(c), jobID, requesterID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// --- Employer handlers ---

func (h *JobHandler) CreateJob(c *gin.Context) {
	employerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	req.EmployerID = employerID

	job, err := h.jobService.CreateJob(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) GetMyJobs(c *gin.Context) {
	employerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.GetEmployerJobs(h.GetDB(c), employerID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	employerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID := c.Param("jobId")

	var req dto.UpdateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.jobService.UpdateJob(h.GetDB(c), jobID, employerID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job updated successfully"})
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	employerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID := c.Param("jobId")

	if err := h.jobService.DeleteJob(h.GetDB(c), jobID, employerID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	employerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID := c.Param("jobId")

	var req dto.UpdateJobStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.jobService.UpdateJobStatus(h.GetDB(c), jobID, employerID, req.Status); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job status updated successfully"})
}

func (h *JobHandler) GetJobApplications(c *gin.Context) {
	employerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID := c.Param("jobId")

	applications, err := h.jobService.GetJobApplications(h.GetDB(c), jobID, employerID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
	})
}

// --- Applicant handlers ---

func (h *JobHandler) Apply(c *gin.Context) {
	applicantID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID := c.Param("jobId")

	var req dto.CreateApplicationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	req.ApplicantID = applicantID
	req.JobID = jobID

	application, err := h.jobService.Apply(h.GetDB(c), applicantID, jobID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *JobHandler) GetMyApplications(c *gin.Context) {
	applicantID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	applications, err := h.jobService.GetMyApplications(h.GetDB(c), applicantID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
	})
}

func (h *JobHandler) UpdateApplicationStatus(c *gin.Context) {
	employerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	applicationID := c.Param("applicationId")

	var req dto.UpdateApplicationStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.jobService.UpdateApplicationStatus(h.GetDB(c), applicationID, employerID, req.Status); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application status updated successfully"})
}
