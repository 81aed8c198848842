package conversation

import (
	"strings"
	"testing"

	"cafe_voice_backend/internal/conversation/domain"
	"cafe_voice_backend/internal/menu"
	"cafe_voice_backend/internal/oracle"
	"cafe_voice_backend/platform/logger"
)

const fmtExpectedStage = "expected stage=%q, got %q"

func newTestReconciler() *Reconciler {
	return NewReconciler(menu.Default(), menu.DefaultExtras(), logger.New("development"))
}

func newTestState() *State {
	return NewState("call-1", "+525512345678")
}

func TestReconcileComputesTotalWithCustomizations(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	result := &oracle.Result{
		NextStage: domain.StageCustomization,
		Items: []oracle.ResultItem{
			{Name: "Capuchino", PreparationArea: "bar", Customizations: []string{"leche de almendra"}},
			{Name: "Croissant", PreparationArea: "kitchen"},
		},
		ResponseText: "Perfecto, un capuchino y un croissant.",
	}

	r.Reconcile(state, result)

	if len(state.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(state.Items))
	}
	// 3.50 + 0.50 + 2.80
	if state.Total != 6.80 {
		t.Fatalf("expected total=6.80, got %v", state.Total)
	}
}

func TestReconcileDropsUnknownItems(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	result := &oracle.Result{
		NextStage: domain.StageCustomization,
		Items: []oracle.ResultItem{
			{Name: "Capuchino", PreparationArea: "bar"},
			{Name: "Paella Valenciana", PreparationArea: "kitchen"},
		},
		ResponseText: "Claro.",
	}

	r.Reconcile(state, result)

	if len(state.Items) != 1 {
		t.Fatalf("expected unknown item to be dropped, got %d items", len(state.Items))
	}
	if state.Items[0].Name != "Capuchino" {
		t.Fatalf("expected remaining item Capuchino, got %q", state.Items[0].Name)
	}
	if state.Total != 3.50 {
		t.Fatalf("expected total=3.50, got %v", state.Total)
	}
}

func TestReconcileCollapsesDuplicateNames(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	result := &oracle.Result{
		NextStage: domain.StageCustomization,
		Items: []oracle.ResultItem{
			{Name: "Capuchino", PreparationArea: "bar"},
			{Name: "capuchino", PreparationArea: "bar"},
		},
		ResponseText: "Claro.",
	}

	r.Reconcile(state, result)

	if len(state.Items) != 1 {
		t.Fatalf("expected duplicate names to collapse, got %d items", len(state.Items))
	}
	if state.Total != 3.50 {
		t.Fatalf("expected total counted once, got %v", state.Total)
	}
}

func TestReconcileIdentificationGuard(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	result := &oracle.Result{
		NextStage:    domain.StageFinalized,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		ResponseText: "Listo, su pedido está completo.",
	}

	r.Reconcile(state, result)

	if state.Stage != domain.StageIdentification {
		t.Fatalf(fmtExpectedStage, domain.StageIdentification, state.Stage)
	}
}

func TestReconcileGuardSatisfiedByProvidedName(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	result := &oracle.Result{
		NextStage:    domain.StageFinalized,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		CustomerName: "Juan Perez",
		ResponseText: "Gracias Juan, su pedido está completo.",
	}

	r.Reconcile(state, result)

	if state.Stage != domain.StageFinalized {
		t.Fatalf(fmtExpectedStage, domain.StageFinalized, state.Stage)
	}
	if state.CustomerName != "Juan Perez" {
		t.Fatalf("expected customerName=Juan Perez, got %q", state.CustomerName)
	}
}

func TestReconcileAppendsTotalAtConfirmation(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	result := &oracle.Result{
		NextStage:    domain.StageConfirmation,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		ResponseText: "¿Confirma su pedido?",
	}

	utterance := r.Reconcile(state, result)

	if !strings.Contains(utterance, "3.50") {
		t.Fatalf("expected utterance to announce the total, got %q", utterance)
	}
}

func TestReconcileDoesNotRepeatAnnouncedTotal(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	response := "Su total es de $3.50, ¿confirma?"
	result := &oracle.Result{
		NextStage:    domain.StageConfirmation,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		ResponseText: response,
	}

	utterance := r.Reconcile(state, result)

	if utterance != response {
		t.Fatalf("expected utterance unchanged, got %q", utterance)
	}
}

func TestReconcileNoTotalOutsideTerminalStages(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	response := "¿Le gustaría agregar algo más?"
	result := &oracle.Result{
		NextStage:    domain.StageUpsellFinal,
		Items:        []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		ResponseText: response,
	}

	utterance := r.Reconcile(state, result)

	if utterance != response {
		t.Fatalf("expected utterance unchanged outside terminal stages, got %q", utterance)
	}
}

func TestReconcileDropsKitchenCustomizations(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	result := &oracle.Result{
		NextStage: domain.StageCustomization,
		Items: []oracle.ResultItem{
			{Name: "Croissant", PreparationArea: "kitchen", Customizations: []string{"leche de almendra"}},
		},
		ResponseText: "Claro.",
	}

	r.Reconcile(state, result)

	if len(state.Items[0].Customizations) != 0 {
		t.Fatalf("expected kitchen item customizations to be dropped, got %v", state.Items[0].Customizations)
	}
	if state.Total != 2.80 {
		t.Fatalf("expected total=2.80, got %v", state.Total)
	}
}

func TestReconcileUnknownCustomizationPricedZero(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	result := &oracle.Result{
		NextStage: domain.StageCustomization,
		Items: []oracle.ResultItem{
			{Name: "Capuchino", PreparationArea: "bar", Customizations: []string{"polvo de oro"}},
		},
		ResponseText: "Claro.",
	}

	r.Reconcile(state, result)

	if state.Total != 3.50 {
		t.Fatalf("expected unknown customization to contribute zero, got total=%v", state.Total)
	}
}

func TestReconcileNormalizesCustomerPhone(t *testing.T) {
	r := newTestReconciler()
	state := newTestState()

	result := &oracle.Result{
		NextStage:     domain.StageIdentification,
		Items:         []oracle.ResultItem{{Name: "Capuchino", PreparationArea: "bar"}},
		CustomerPhone: "55 1234 5678",
		ResponseText:  "Gracias.",
	}

	r.Reconcile(state, result)

	if state.CustomerPhone != "+525512345678" {
		t.Fatalf("expected normalized phone, got %q", state.CustomerPhone)
	}
}
