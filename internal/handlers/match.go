package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"stranger-chat-service/internal/matchmaking"
	"stranger-chat-service/internal/middleware"
	"stranger-chat-service/internal/observability"
	"stranger-chat-service/internal/telemetry"
)

// MatchHandler manages matchmaking endpoints.
type MatchHandler struct {
	gate    *matchmaking.Gate
	engine  *matchmaking.Engine
	emitter *telemetry.AuditEmitter
}

// NewMatchHandler builds a MatchHandler.
func NewMatchHandler(gate *matchmaking.Gate, engine *matchmaking.Engine, emitter *telemetry.AuditEmitter) *MatchHandler {
	return &MatchHandler{gate: gate, engine: engine, emitter: emitter}
}

// RequestMatch runs the eligibility gate and one pairing attempt. The response
// is one of: a room id, "waiting" (caller joined the queue, poll again) or
// "retry" (lost a claim race, re-invoke immediately).
func (h *MatchHandler) RequestMatch(c *gin.Context) {
	userID := middleware.UserID(c)

	if err := h.gate.Check(c.Request.Context(), userID); err != nil {
		if reason, ok := eligibilityReason(err); ok {
			observability.IncMatchRequest("ineligible")
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "reason": reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check eligibility"})
		return
	}

	result, err := h.engine.FindMatch(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "matchmaking failed"})
		return
	}

	observability.IncMatchRequest(result.Status)
	if result.Status == matchmaking.StatusMatched {
		h.emitter.Emit(c.Request.Context(), "INFO", "match found room="+result.RoomID, requestIDFromContext(c), &userID)
		c.JSON(http.StatusOK, gin.H{"room_id": result.RoomID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": result.Status})
}

// CancelMatch removes the caller's waiting entry. Best-effort: succeeds even
// when no entry exists.
func (h *MatchHandler) CancelMatch(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.engine.Cancel(c.Request.Context(), userID); err != nil {
		log.Printf("cancel match failed for %s: %v", userID, err)
	}
	c.Status(http.StatusNoContent)
}

func eligibilityReason(err error) (string, bool) {
	switch {
	case errors.Is(err, matchmaking.ErrProfileMissing):
		return "profile_missing", true
	case errors.Is(err, matchmaking.ErrUnderage):
		return "underage", true
	case errors.Is(err, matchmaking.ErrVerificationPending):
		return "verification_pending", true
	case errors.Is(err, matchmaking.ErrVerificationRejected):
		return "verification_rejected", true
	default:
		return "", false
	}
}
