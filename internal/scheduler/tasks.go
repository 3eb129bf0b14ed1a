// Package scheduler runs the cadence housekeeping on asynq: the hourly
// follow-up sweep and the daily no-response stop.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskFollowupSweep = "cadence:followup-sweep"

const TaskNoResponseStop = "cadence:no-response-stop"

// SweepPayload carries the enqueue instant, for tracing sweep latency.
type SweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewFollowupSweepTask(payload SweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowupSweep, data), nil
}

func NewNoResponseStopTask(payload SweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNoResponseStop, data), nil
}

func ParseSweepPayload(task *asynq.Task) (SweepPayload, error) {
	var payload SweepPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SweepPayload{}, err
	}
	return payload, nil
}
