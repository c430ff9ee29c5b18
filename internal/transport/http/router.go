package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	a "github.com/GradMERN/e-guide-Backend/pkg/auth"
)

type Handlers struct {
	Enrollments   *EnrollmentHandler
	Tours         *TourHandler
	Webhook       *WebhookHandler
	Notifications *NotificationHandler
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	v1 := r.Group("/v1")

	// Content is readable anonymously; the tier shrinks with the caller.
	v1.GET("/tours/:id/content", OptionalJWT(), h.Tours.Content)

	// The gateway authenticates with a body signature, not a JWT.
	v1.POST("/webhooks/payment", h.Webhook.Handle)

	authed := v1.Group("", JWTAuth())
	{
		authed.POST("/tours/:id/enroll", h.Enrollments.Enroll)
		authed.POST("/enrollments/:id/start", h.Enrollments.Start)
		authed.GET("/enrollments", h.Enrollments.List)
		authed.GET("/payments", h.Enrollments.Payments)

		authed.GET("/notifications", h.Notifications.List)
		authed.POST("/notifications/:id/read", h.Notifications.MarkRead)
	}

	guides := v1.Group("", JWTAuth(), RequireRole(a.RoleGuide, a.RoleAdmin))
	{
		guides.POST("/tours/:id/publish", h.Tours.Publish)
		guides.POST("/tours/:id/unpublish", h.Tours.Unpublish)
		guides.POST("/waypoints/:id/publish", h.Tours.PublishWaypoint)
		guides.POST("/waypoints/:id/unpublish", h.Tours.UnpublishWaypoint)
	}

	return r
}
