// Package voice provides the telephony-facing conversation module.
package voice

import (
	"cafe_voice_backend/internal/conversation"
	apphttp "cafe_voice_backend/internal/http"
	"cafe_voice_backend/internal/voice/handler"
	"cafe_voice_backend/platform/validator"
)

// Module represents the voice webhook domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new voice module with all dependencies wired
func NewModule(controller *conversation.Controller, val *validator.Validator) *Module {
	return &Module{handler: handler.New(controller, val)}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "voice"
}

// RegisterRoutes registers the module's routes under /api/v1/voice
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Voice)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
