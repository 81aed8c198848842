package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cafe_voice_backend/internal/conversation"
	"cafe_voice_backend/internal/conversation/domain"
	"cafe_voice_backend/internal/menu"
	"cafe_voice_backend/internal/oracle"
	"cafe_voice_backend/internal/voice/transport"
	"cafe_voice_backend/platform/events"
	"cafe_voice_backend/platform/logger"
	"cafe_voice_backend/platform/validator"
)

type stubExtractor struct{}

func (stubExtractor) Query(context.Context, string, oracle.TurnInput) (*oracle.Result, error) {
	return &oracle.Result{
		NextStage:    domain.StageCustomization,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		ResponseText: "Claro.",
	}, nil
}

type stubWriter struct{}

func (stubWriter) WriteOrder(context.Context, conversation.FinalOrder) (string, error) {
	return "PED-2026-0001", nil
}

type stubDispatcher struct{}

func (stubDispatcher) Dispatch(context.Context, string, domain.Area, []domain.Item) error {
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("development")
	catalog := menu.Default()
	extras := menu.DefaultExtras()
	controller := conversation.NewController(
		conversation.NewMemoryRegistry(),
		stubExtractor{},
		conversation.NewReconciler(catalog, extras, log),
		stubWriter{},
		stubDispatcher{},
		events.NewInMemoryBus(log),
		catalog,
		extras,
		log,
		5,
	)

	engine := gin.New()
	h := New(controller, validator.New())
	h.RegisterRoutes(engine.Group("/api/v1/voice"))
	return engine
}

func postTurn(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/turn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestTurnRejectsMissingCallID(t *testing.T) {
	engine := newTestRouter(t)

	w := postTurn(t, engine, `{"callerPhone":"+525512345678"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTurnRejectsMalformedBody(t *testing.T) {
	engine := newTestRouter(t)

	w := postTurn(t, engine, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTurnFirstTurnReturnsGreeting(t *testing.T) {
	engine := newTestRouter(t)

	w := postTurn(t, engine, `{"callId":"call-1","callerPhone":"+525512345678"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp transport.TurnResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Continue {
		t.Fatalf("expected continue=true on first turn")
	}
	if resp.Utterance == "" {
		t.Fatalf("expected a greeting utterance")
	}
	if resp.NextPromptTimeoutSeconds != 5 {
		t.Fatalf("expected prompt timeout 5, got %d", resp.NextPromptTimeoutSeconds)
	}
}

func TestTurnAppliesTranscript(t *testing.T) {
	engine := newTestRouter(t)

	if w := postTurn(t, engine, `{"callId":"call-1","callerPhone":"+525512345678"}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200 on first turn, got %d", w.Code)
	}

	w := postTurn(t, engine, `{"callId":"call-1","callerPhone":"+525512345678","transcript":"quiero un capuchino"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp transport.TurnResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Utterance != "Claro." {
		t.Fatalf("expected reconciled utterance, got %q", resp.Utterance)
	}
	if !resp.Continue {
		t.Fatalf("expected continue=true mid-conversation")
	}
}
