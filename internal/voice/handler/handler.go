// Package handler exposes the voice webhook over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cafe_voice_backend/internal/conversation"
	"cafe_voice_backend/internal/voice/transport"
	"cafe_voice_backend/platform/httpkit"
	"cafe_voice_backend/platform/sanitize"
	"cafe_voice_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	maxTranscriptLen = 4000
)

// Handler handles the per-turn webhook from the voice transport.
type Handler struct {
	controller *conversation.Controller
	val        *validator.Validator
}

func New(controller *conversation.Controller, val *validator.Validator) *Handler {
	return &Handler{controller: controller, val: val}
}

// RegisterRoutes registers the voice routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/turn", h.Turn)
}

// Turn handles POST /api/v1/voice/turn. It must always answer with a
// speakable utterance, so controller errors still map to a 200 body unless
// the request itself was malformed.
func (h *Handler) Turn(c *gin.Context) {
	var req transport.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	transcript := ""
	if req.Transcript != nil {
		transcript = sanitize.Truncate(sanitize.Text(*req.Transcript), maxTranscriptLen)
	}

	result, err := h.controller.HandleTurn(c.Request.Context(), req.CallID, req.CallerPhone, transcript)
	if err != nil && result.Utterance == "" {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.TurnResponse{
		Utterance:                result.Utterance,
		Continue:                 result.Continue,
		NextPromptTimeoutSeconds: result.NextPromptTimeoutSec,
	})
}
