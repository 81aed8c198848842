package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cafe_voice_backend/internal/conversation/domain"
	"cafe_voice_backend/internal/menu"
	"cafe_voice_backend/internal/oracle"
	"cafe_voice_backend/platform/events"
	"cafe_voice_backend/platform/logger"
)

type fakeExtractor struct {
	result *oracle.Result
	err    error
	calls  int
}

func (f *fakeExtractor) Query(_ context.Context, _ string, _ oracle.TurnInput) (*oracle.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeWriter struct {
	orderID string
	err     error
	calls   int
	last    FinalOrder
}

func (f *fakeWriter) WriteOrder(_ context.Context, order FinalOrder) (string, error) {
	f.calls++
	f.last = order
	if f.err != nil {
		return "", f.err
	}
	return f.orderID, nil
}

type fakeDispatcher struct {
	mu    sync.Mutex
	areas []domain.Area
	err   error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, _ string, area domain.Area, _ []domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.areas = append(f.areas, area)
	return f.err
}

type harness struct {
	controller *Controller
	registry   *MemoryRegistry
	extractor  *fakeExtractor
	writer     *fakeWriter
	dispatcher *fakeDispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.New("development")
	registry := NewMemoryRegistry()
	extractor := &fakeExtractor{}
	writer := &fakeWriter{orderID: "PED-2026-0001"}
	dispatcher := &fakeDispatcher{}
	catalog := menu.Default()
	extras := menu.DefaultExtras()
	controller := NewController(
		registry,
		extractor,
		NewReconciler(catalog, extras, log),
		writer,
		dispatcher,
		events.NewInMemoryBus(log),
		catalog,
		extras,
		log,
		5,
	)
	return &harness{
		controller: controller,
		registry:   registry,
		extractor:  extractor,
		writer:     writer,
		dispatcher: dispatcher,
	}
}

func TestFirstTurnGreetsWithoutOracle(t *testing.T) {
	h := newHarness(t)

	result, err := h.controller.HandleTurn(context.Background(), "call-1", "+525512345678", "quiero un capuchino")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Continue {
		t.Fatalf("expected continue=true on first turn")
	}
	if result.Utterance != utteranceGreeting {
		t.Fatalf("expected greeting, got %q", result.Utterance)
	}
	if h.extractor.calls != 0 {
		t.Fatalf("expected no oracle call on first turn, got %d", h.extractor.calls)
	}
	if h.registry.Len() != 1 {
		t.Fatalf("expected session created, registry has %d", h.registry.Len())
	}
}

func TestSilenceReprompsWithoutOracle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Utterance != utteranceRepeat {
		t.Fatalf("expected repeat prompt, got %q", result.Utterance)
	}
	if !result.Continue {
		t.Fatalf("expected continue=true on silence")
	}
	if h.extractor.calls != 0 {
		t.Fatalf("expected no oracle call on silence, got %d", h.extractor.calls)
	}
}

func TestTurnAppliesOracleResult(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.extractor.result = &oracle.Result{
		NextStage:    domain.StageCustomization,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		ResponseText: "Un capuchino, ¿desea alguna leche especial?",
	}

	result, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", "quiero un capuchino")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Continue {
		t.Fatalf("expected continue=true mid-conversation")
	}

	state, created, err := h.registry.GetOrCreate(ctx, "call-1", "+525512345678")
	if err != nil || created {
		t.Fatalf("expected existing session, created=%v err=%v", created, err)
	}
	if state.Stage != domain.StageCustomization {
		t.Fatalf("expected stage=%q, got %q", domain.StageCustomization, state.Stage)
	}
	if state.Total != 3.50 {
		t.Fatalf("expected total=3.50, got %v", state.Total)
	}
}

func TestOracleFailureLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.extractor.result = &oracle.Result{
		NextStage:    domain.StageCustomization,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		ResponseText: "Claro.",
	}
	if _, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", "quiero un capuchino"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.extractor.err = &oracle.Error{Reason: "retry ceiling exhausted", Transient: true}

	result, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", "y un croissant")
	if err != nil {
		t.Fatalf("degraded turn must not surface an error, got %v", err)
	}
	if result.Utterance != utteranceApology {
		t.Fatalf("expected apology, got %q", result.Utterance)
	}
	if !result.Continue {
		t.Fatalf("expected continue=true after degraded turn")
	}

	state, _, err := h.registry.GetOrCreate(ctx, "call-1", "+525512345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Stage != domain.StageCustomization {
		t.Fatalf("expected stage unchanged, got %q", state.Stage)
	}
	if state.Total != 3.50 {
		t.Fatalf("expected total unchanged, got %v", state.Total)
	}
	if state.PendingTranscript != "y un croissant" {
		t.Fatalf("expected pending transcript recorded, got %q", state.PendingTranscript)
	}
}

func TestFinalizationWritesOrderAndEndsCall(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.extractor.result = &oracle.Result{
		NextStage: domain.StageFinalized,
		Items: []oracle.ResultItem{
			{Name: "Capuchino", PreparationArea: "bar"},
			{Name: "Croissant", PreparationArea: "kitchen"},
		},
		CustomerName: "Juan Perez",
		ResponseText: "Su pedido está confirmado.",
	}

	result, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", "sí, soy Juan Perez")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Continue {
		t.Fatalf("expected continue=false at finalization")
	}
	if !strings.Contains(result.Utterance, "PED-2026-0001") {
		t.Fatalf("expected closing utterance to contain the order number, got %q", result.Utterance)
	}

	if h.writer.calls != 1 {
		t.Fatalf("expected exactly one persistence write, got %d", h.writer.calls)
	}
	if h.writer.last.CustomerName != "Juan Perez" {
		t.Fatalf("expected customerName=Juan Perez, got %q", h.writer.last.CustomerName)
	}
	if h.writer.last.Total != 6.30 {
		t.Fatalf("expected total=6.30, got %v", h.writer.last.Total)
	}

	h.dispatcher.mu.Lock()
	areas := len(h.dispatcher.areas)
	h.dispatcher.mu.Unlock()
	if areas != 2 {
		t.Fatalf("expected dispatch to both areas, got %d", areas)
	}

	if h.registry.Len() != 0 {
		t.Fatalf("expected session deleted after finalization, registry has %d", h.registry.Len())
	}
}

func TestPersistenceFailureEndsCallAndDropsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.writer.err = errors.New("connection refused")
	h.extractor.result = &oracle.Result{
		NextStage:    domain.StageFinalized,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		CustomerName: "Juan Perez",
		ResponseText: "Su pedido está confirmado.",
	}

	result, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", "sí")
	if err == nil {
		t.Fatalf("expected persistence error surfaced to caller of HandleTurn")
	}
	if result.Continue {
		t.Fatalf("expected continue=false on fatal persistence failure")
	}
	if result.Utterance != utteranceSystemError {
		t.Fatalf("expected system error utterance, got %q", result.Utterance)
	}
	if h.registry.Len() != 0 {
		t.Fatalf("expected session discarded, registry has %d", h.registry.Len())
	}
}

func TestDispatchFailureDoesNotAffectCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.dispatcher.err = errors.New("queue unavailable")
	h.extractor.result = &oracle.Result{
		NextStage:    domain.StageFinalized,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		CustomerName: "Juan Perez",
		ResponseText: "Su pedido está confirmado.",
	}

	result, err := h.controller.HandleTurn(ctx, "call-1", "+525512345678", "sí")
	if err != nil {
		t.Fatalf("dispatch failure must not fail the turn, got %v", err)
	}
	if result.Continue {
		t.Fatalf("expected continue=false at finalization")
	}
	if !strings.Contains(result.Utterance, "PED-2026-0001") {
		t.Fatalf("expected order number in closing utterance, got %q", result.Utterance)
	}
}
