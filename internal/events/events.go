// Package events defines the domain events exchanged between modules.
package events

import (
	"cafe_voice_backend/internal/conversation/domain"
	"cafe_voice_backend/platform/events"
)

const (
	CallStartedName    = "call.started"
	TurnDegradedName   = "call.turn_degraded"
	OrderFinalizedName = "order.finalized"
)

// CallStarted fires on the first turn of a new call.
type CallStarted struct {
	events.BaseEvent
	CallID      string `json:"callId"`
	CallerPhone string `json:"callerPhone"`
}

func (e CallStarted) EventName() string { return CallStartedName }

// TurnDegraded fires when a turn falls back to an apology because the
// extractor failed.
type TurnDegraded struct {
	events.BaseEvent
	CallID    string `json:"callId"`
	Stage     string `json:"stage"`
	Transient bool   `json:"transient"`
	Reason    string `json:"reason"`
}

func (e TurnDegraded) EventName() string { return TurnDegradedName }

// OrderFinalized fires after a completed order has been written.
type OrderFinalized struct {
	events.BaseEvent
	CallID       string        `json:"callId"`
	OrderID      string        `json:"orderId"`
	CustomerName string        `json:"customerName"`
	Total        float64       `json:"total"`
	Items        []domain.Item `json:"items"`
}

func (e OrderFinalized) EventName() string { return OrderFinalizedName }
