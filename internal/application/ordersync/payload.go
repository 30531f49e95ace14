package ordersync

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/syncjob"
)

// Job actions within the order queues
const (
	ActionPush   = "push"
	ActionCancel = "cancel"
)

// Job priorities; cancels overtake pending pushes for the same queue
const (
	priorityCancel = 0
	priorityPush   = 10
)

// OrderJobPayload is the payload of order queue jobs. Handlers re-read
// the order and decide from current state, so a stale payload is safe.
type OrderJobPayload struct {
	OrderID uuid.UUID `json:"orderId"`
	Action  string    `json:"action"`
	Reason  string    `json:"reason,omitempty"`
}

func newOrderJob(queue string, payload OrderJobPayload, base syncjob.Options) (*syncjob.Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts := base
	opts.Priority = priorityPush
	if payload.Action == ActionCancel {
		opts.Priority = priorityCancel
	}
	return syncjob.NewJob(queue, data, opts)
}
