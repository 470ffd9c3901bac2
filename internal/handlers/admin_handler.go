package handlers

import (
	"net/http"

	"skillbridge_backend/internal/middleware"
	"skillbridge_backend/internal/models"
	"skillbridge_backend/internal/services"
	"skillbridge_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AdminHandler - проверка платежей, управление пользователями
// и сводная статистика. Все роуты только для роли admin.
type AdminHandler struct {
	*BaseHandler
	purchaseService services.PurchaseService
	userService     services.UserService
	statsService    services.StatsService
}

func NewAdminHandler(base *BaseHandler, purchaseService services.PurchaseService, userService services.UserService, statsService services.StatsService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:     base,
		purchaseService: purchaseService,
		userService:     userService,
		statsService:    statsService,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin), middleware.RequireAdminAccount())
	{
		admin.GET("/purchases/pending", h.ListPendingPurchases)
		admin.POST("/purchases/:purchaseId/decision", h.DecidePurchase)

		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:userId/status", h.UpdateUserStatus)
		admin.PUT("/users/:userId/role", h.UpdateUserRole)
		admin.DELETE("/users/:userId", h.DeleteUser)

		admin.GET("/stats", h.GetPlatformStats)
	}
}

// ListPendingPurchases - очередь submitted покупок, старые сверху
func (h *AdminHandler) ListPendingPurchases(c *gin.Context) {
	var req dto.ListPendingRequest
	req.Page, req.PageSize = ParsePagination(c)

	purchases, total, err := h.purchaseService.ListPending(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"purchases": purchases,
		"total":     total,
		"page":      req.Page,
	})
}

// DecidePurchase - approve или reject, ровно один раз на покупку.
// Повторное решение вернет 409.
func (h *AdminHandler) DecidePurchase(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	purchaseID := c.Param("purchaseId")

	var req dto.DecidePurchaseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	purchase, err := h.purchaseService.Decide(c.Request.Context(), h.GetDB(c), adminID, purchaseID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req dto.ListUsersRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}
	req.Page, req.PageSize = ParsePagination(c)

	users, total, err := h.userService.ListUsers(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  req.Page,
	})
}

func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	userID := c.Param("userId")

	var req dto.UpdateUserStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.UpdateUserStatus(h.GetDB(c), adminID, userID, req.Status); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User status updated successfully"})
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	userID := c.Param("userId")

	var req dto.UpdateUserRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.UpdateUserRole(h.GetDB(c), adminID, userID, req.Role); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	userID := c.Param("userId")

	if err := h.userService.DeleteUser(h.GetDB(c), adminID, userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *AdminHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.statsService.GetPlatformStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
