package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GradMERN/e-guide-Backend/internal/repository"
	"github.com/GradMERN/e-guide-Backend/internal/service"
)

type EnrollmentHandler struct {
	svc      *service.EnrollmentSvc
	payments *repository.PaymentRepo
}

func NewEnrollmentHandler(svc *service.EnrollmentSvc, payments *repository.PaymentRepo) *EnrollmentHandler {
	return &EnrollmentHandler{svc: svc, payments: payments}
}

// POST /v1/tours/:id/enroll
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, _ := callerOf(c)
	res, err := h.svc.Request(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /v1/enrollments/:id/start
func (h *EnrollmentHandler) Start(c *gin.Context) {
	userID, _ := callerOf(c)
	e, err := h.svc.Start(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// GET /v1/enrollments
func (h *EnrollmentHandler) List(c *gin.Context) {
	userID, _ := callerOf(c)
	ov, err := h.svc.Overview(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// GET /v1/payments
func (h *EnrollmentHandler) Payments(c *gin.Context) {
	userID, _ := callerOf(c)
	list, err := h.payments.ForUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}
