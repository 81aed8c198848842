package conversation

import (
	"fmt"
	"strings"

	"cafe_voice_backend/internal/conversation/domain"
	"cafe_voice_backend/internal/menu"
	"cafe_voice_backend/internal/oracle"
	"cafe_voice_backend/platform/logger"
	"cafe_voice_backend/platform/phone"
)

// Reconciler folds an extraction result into a session and derives the
// caller-facing utterance for the turn.
type Reconciler struct {
	catalog *menu.Catalog
	extras  menu.ExtrasTable
	log     *logger.Logger
}

func NewReconciler(catalog *menu.Catalog, extras menu.ExtrasTable, log *logger.Logger) *Reconciler {
	return &Reconciler{catalog: catalog, extras: extras, log: log}
}

// Reconcile mutates state with the validated result and returns the
// utterance to speak. The item list is replaced wholesale, the total is
// recomputed from the price tables, and an order proposing FINALIZED while
// the customer is still anonymous is redirected to IDENTIFICATION.
func (r *Reconciler) Reconcile(state *State, result *oracle.Result) string {
	items := r.validateItems(state.CallID, result.Items)

	stage := result.NextStage
	if stage == domain.StageFinalized && state.CustomerName == domain.AnonymousCustomer && result.CustomerName == "" {
		stage = domain.StageIdentification
	}

	patch := Patch{Stage: &stage, Items: &items}
	if result.CustomerName != "" {
		name := result.CustomerName
		patch.CustomerName = &name
	}
	if result.CustomerPhone != "" {
		normalized := phone.NormalizeE164(result.CustomerPhone)
		patch.CustomerPhone = &normalized
	}
	state.Apply(patch)
	state.Total = r.computeTotal(state.CallID, state.Items)

	return r.decorateUtterance(state, result.ResponseText)
}

// validateItems checks each extracted item against the catalog. Unknown
// names are dropped, duplicate names collapse to the first occurrence, and
// customizations on kitchen items are discarded since only bar drinks take
// them.
func (r *Reconciler) validateItems(callID string, extracted []oracle.ResultItem) []domain.Item {
	items := make([]domain.Item, 0, len(extracted))
	seen := make(map[string]bool, len(extracted))

	for _, candidate := range extracted {
		entry, ok := r.catalog.Lookup(candidate.Name)
		if !ok {
			r.log.WithCallID(callID).Warn("dropping unknown menu item", "item", candidate.Name)
			continue
		}
		key := strings.ToLower(entry.Name)
		if seen[key] {
			continue
		}
		seen[key] = true

		item := domain.Item{
			Name:            entry.Name,
			UnitPrice:       entry.Price,
			PreparationArea: entry.PreparationArea,
		}
		if len(candidate.Customizations) > 0 {
			if entry.PreparationArea == domain.AreaBar {
				item.Customizations = append([]string(nil), candidate.Customizations...)
			} else {
				r.log.WithCallID(callID).Warn("dropping customizations on kitchen item", "item", entry.Name)
			}
		}
		items = append(items, item)
	}
	return items
}

func (r *Reconciler) computeTotal(callID string, items []domain.Item) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice
		for _, custom := range item.Customizations {
			price, ok := r.extras.Price(custom)
			if !ok {
				r.log.WithCallID(callID).Warn("unknown customization priced at zero", "customization", custom)
				continue
			}
			total += price
		}
	}
	return domain.RoundTotal(total)
}

// decorateUtterance appends the total when the conversation reaches a stage
// that must announce it and the extractor's text does not already.
func (r *Reconciler) decorateUtterance(state *State, utterance string) string {
	if !state.Stage.AnnouncesTotal() {
		return utterance
	}
	formatted := domain.FormatTotal(state.Total)
	if strings.Contains(utterance, formatted) {
		return utterance
	}
	return strings.TrimSpace(utterance) + fmt.Sprintf(" El total es de $%s.", formatted)
}
