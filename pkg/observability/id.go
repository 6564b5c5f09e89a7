package observability

import "github.com/google/uuid"

// NewRunID generates a unique identifier for an orchestrator run.
func NewRunID() string {
	return "run_" + uuid.NewString()
}
