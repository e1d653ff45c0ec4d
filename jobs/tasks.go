package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan classifies invoices of active projects and publishes overdue gauges.
	TaskOverdueScan = "invoices:overdue-scan"
)

// OverdueScanPayload narrows a scan to specific projects. Empty means all
// active projects.
type OverdueScanPayload struct {
	ProjectIDs []string `json:"project_ids,omitempty"`
}

// NewOverdueScanTask constructs an Asynq task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}
