// Package domain holds the conversation bounded context's core types and
// invariants: dialogue stages, order items, and totals arithmetic.
package domain

// Stage is the discrete phase of the ordering dialogue.
type Stage string

const (
	StageInitialOrder   Stage = "INITIAL_ORDER"
	StageCustomization  Stage = "CUSTOMIZATION"
	StageUpsell         Stage = "UPSELL"
	StageUpsellFinal    Stage = "UPSELL_FINAL"
	StagePayment        Stage = "PAYMENT"
	StageConfirmation   Stage = "CONFIRMATION"
	StageIdentification Stage = "IDENTIFICATION"
	StageFinalized      Stage = "FINALIZED"
)

var knownStages = map[Stage]bool{
	StageInitialOrder:   true,
	StageCustomization:  true,
	StageUpsell:         true,
	StageUpsellFinal:    true,
	StagePayment:        true,
	StageConfirmation:   true,
	StageIdentification: true,
	StageFinalized:      true,
}

// ParseStage validates a raw stage name coming off the wire.
func ParseStage(raw string) (Stage, bool) {
	s := Stage(raw)
	return s, knownStages[s]
}

// IsTerminal reports whether the stage ends the call.
func (s Stage) IsTerminal() bool {
	return s == StageFinalized
}

// AnnouncesTotal reports whether the caller must hear the running total at
// this stage, before confirming or being told the order is complete.
func (s Stage) AnnouncesTotal() bool {
	return s == StageConfirmation || s == StageFinalized
}
