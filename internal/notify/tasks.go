// Package notify forwards finalized order tickets to the preparation areas
// through the asynq queue.
package notify

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"cafe_voice_backend/internal/conversation/domain"
)

const TaskDispatchBar = "orders.dispatch.bar"

const TaskDispatchKitchen = "orders.dispatch.kitchen"

// TicketItem is one line of a preparation ticket.
type TicketItem struct {
	Name           string   `json:"name"`
	Customizations []string `json:"customizations,omitempty"`
}

// DispatchPayload is the ticket sent to one preparation area.
type DispatchPayload struct {
	OrderID string       `json:"orderId"`
	Area    string       `json:"area"`
	Items   []TicketItem `json:"items"`
}

func taskName(area domain.Area) string {
	if area == domain.AreaKitchen {
		return TaskDispatchKitchen
	}
	return TaskDispatchBar
}

func NewDispatchTask(payload DispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskName(domain.Area(payload.Area)), data), nil
}

func ParseDispatchPayload(task *asynq.Task) (DispatchPayload, error) {
	var payload DispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DispatchPayload{}, err
	}
	return payload, nil
}
