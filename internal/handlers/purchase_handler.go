package handlers

import (
	"net/http"

	"skillbridge_backend/internal/middleware"
	"skillbridge_backend/internal/services"
	"skillbridge_backend/internal/services/dto"
	"skillbridge_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	*BaseHandler
	purchaseService services.PurchaseService
}

func NewPurchaseHandler(base *BaseHandler, purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler:     base,
		purchaseService: purchaseService,
	}
}

func (h *PurchaseHandler) RegisterRoutes(r *gin.RouterGroup) {
	purchases := r.Group("/purchases")
	purchases.Use(middleware.AuthMiddleware())
	{
		purchases.GET("/instructions/:courseId", h.GetPaymentInstructions)
		purchases.POST("", h.SubmitPurchase)
		purchases.GET("/my", h.GetMyPurchases)
		purchases.GET("/:purchaseId", h.GetPurchase)
	}
}

func (h *PurchaseHandler) GetPaymentInstructions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	courseID := c.Param("courseId")

	instructions, err := h.purchaseService.GetPaymentInstructions(h.GetDB(c), userID, courseID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, instructions)
}

// SubmitPurchase - multipart запрос: course_id в form-поле,
// квитанция файлом в поле "receipt". Без квитанции заявка
// не принимается.
func (h *PurchaseHandler) SubmitPurchase(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePurchaseRequest
	if err := c.ShouldBind(&req); err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid request: "+err.Error()))
		return
	}
	if req.CourseID == "" {
		h.HandleServiceError(c, apperrors.NewBadRequestError("course_id is required"))
		return
	}

	receipt, err := c.FormFile("receipt")
	if err != nil {
		h.HandleServiceError(c, apperrors.ErrReceiptRequired)
		return
	}

	purchase, err := h.purchaseService.SubmitPurchase(c.Request.Context(), h.GetDB(c), userID, req.CourseID, receipt)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

func (h *PurchaseHandler) GetMyPurchases(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	purchases, err := h.purchaseService.GetMyPurchases(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"purchases": purchases,
		"total":     len(purchases),
	})
}

func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	purchaseID := c.Param("purchaseId")

	purchase, err := h.purchaseService.GetPurchase(h.GetDB(c), purchaseID, userID, middleware.GetUserRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase)
}
