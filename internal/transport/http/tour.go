package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GradMERN/e-guide-Backend/internal/service"
)

type TourHandler struct {
	svc *service.TourSvc
}

func NewTourHandler(svc *service.TourSvc) *TourHandler {
	return &TourHandler{svc: svc}
}

// GET /v1/tours/:id/content (anonymous allowed; tier depends on caller)
func (h *TourHandler) Content(c *gin.Context) {
	userID, role := callerOf(c)
	out, err := h.svc.Content(c.Request.Context(), service.Caller{UserID: userID, Role: role}, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /v1/tours/:id/publish (GUIDE/ADMIN)
func (h *TourHandler) Publish(c *gin.Context) {
	userID, role := callerOf(c)
	if err := h.svc.PublishTour(c.Request.Context(), service.Caller{UserID: userID, Role: role}, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": true})
}

// POST /v1/tours/:id/unpublish (GUIDE/ADMIN)
func (h *TourHandler) Unpublish(c *gin.Context) {
	userID, role := callerOf(c)
	if err := h.svc.UnpublishTour(c.Request.Context(), service.Caller{UserID: userID, Role: role}, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": false})
}

// POST /v1/waypoints/:id/publish (GUIDE/ADMIN)
func (h *TourHandler) PublishWaypoint(c *gin.Context) {
	userID, role := callerOf(c)
	if err := h.svc.PublishWaypoint(c.Request.Context(), service.Caller{UserID: userID, Role: role}, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": true})
}

// POST /v1/waypoints/:id/unpublish (GUIDE/ADMIN)
func (h *TourHandler) UnpublishWaypoint(c *gin.Context) {
	userID, role := callerOf(c)
	if err := h.svc.UnpublishWaypoint(c.Request.Context(), service.Caller{UserID: userID, Role: role}, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": false})
}
