// Package conversation drives the per-call ordering dialogue: session state,
// reconciliation of extractor output into a running order, and the turn
// state machine.
package conversation

import (
	"time"

	"cafe_voice_backend/internal/conversation/domain"
)

// State is the mutable record for one active call.
type State struct {
	CallID            string        `json:"callId"`
	CallerPhone       string        `json:"callerPhone"`
	Stage             domain.Stage  `json:"stage"`
	Items             []domain.Item `json:"items"`
	CustomerName      string        `json:"customerName"`
	CustomerPhone     string        `json:"customerPhone"`
	Total             float64       `json:"total"`
	PendingTranscript string        `json:"pendingTranscript,omitempty"`
	StartedAt         time.Time     `json:"startedAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
	Turns             int           `json:"turns"`
}

// NewState returns the initial state for a call's first turn. The caller's
// phone doubles as the customer phone until identification overrides it.
func NewState(callID, callerPhone string) *State {
	now := time.Now().UTC()
	return &State{
		CallID:        callID,
		CallerPhone:   callerPhone,
		Stage:         domain.StageInitialOrder,
		Items:         []domain.Item{},
		CustomerName:  domain.AnonymousCustomer,
		CustomerPhone: callerPhone,
		StartedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the
// registry's stored value.
func (s *State) Clone() *State {
	out := *s
	out.Items = make([]domain.Item, len(s.Items))
	for i, item := range s.Items {
		out.Items[i] = item
		out.Items[i].Customizations = append([]string(nil), item.Customizations...)
	}
	return &out
}

// Patch is a partial state update. Total is deliberately absent: it is
// derived from the item list and recomputed on every application, never
// merged from outside.
type Patch struct {
	Stage             *domain.Stage
	Items             *[]domain.Item
	CustomerName      *string
	CustomerPhone     *string
	PendingTranscript *string
}

// Apply shallow-merges the patch into the state and stamps UpdatedAt.
func (s *State) Apply(p Patch) {
	if p.Stage != nil {
		s.Stage = *p.Stage
	}
	if p.Items != nil {
		s.Items = *p.Items
	}
	if p.CustomerName != nil {
		s.CustomerName = *p.CustomerName
	}
	if p.CustomerPhone != nil {
		s.CustomerPhone = *p.CustomerPhone
	}
	if p.PendingTranscript != nil {
		s.PendingTranscript = *p.PendingTranscript
	}
	s.UpdatedAt = time.Now().UTC()
}
