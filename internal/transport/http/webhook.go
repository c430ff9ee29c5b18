package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GradMERN/e-guide-Backend/internal/gateway"
	"github.com/GradMERN/e-guide-Backend/internal/service"
)

// WebhookHandler is the only unauthenticated write path. It admits nothing
// without a valid body signature and delegates every state change to the
// reconciler.
type WebhookHandler struct {
	secret string
	svc    *service.ReconcileSvc
}

func NewWebhookHandler(secret string, svc *service.ReconcileSvc) *WebhookHandler {
	return &WebhookHandler{secret: secret, svc: svc}
}

// POST /v1/webhooks/payment
func (h *WebhookHandler) Handle(c *gin.Context) {
	// Signature covers the raw bytes; read them before any parsing.
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	sig := c.GetHeader("X-Gateway-Signature")
	if !gateway.VerifySignature(h.secret, body, sig) {
		log.Printf("[webhook] rejected: bad signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad signature", "code": "bad_signature"})
		return
	}

	var ev gateway.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	if err := h.svc.HandleEvent(c.Request.Context(), ev); err != nil {
		// Non-2xx makes the gateway redeliver; reconciliation is idempotent
		// so the retry is safe.
		log.Printf("[webhook] reconcile error id=%s key=%s: %v", ev.ID, ev.Key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconcile failed"})
		return
	}
	c.Status(http.StatusOK)
}
