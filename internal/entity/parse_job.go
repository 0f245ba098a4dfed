package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ParseJob represents one tokenize+extract invocation for data
// transfer between layers. TokensJSON holds the full token stream so
// the fields stage (and re-inspection) can run without re-reading the
// vault file.
type ParseJob struct {
	ID            uuid.UUID       `json:"id"`
	FileID        uuid.UUID       `json:"file_id"`
	Status        string          `json:"status"`
	Outcome       *string         `json:"outcome,omitempty"` // complete|interrupted|timedOut|errored
	StatusMessage *string         `json:"status_message,omitempty"`
	TokenCount    int             `json:"token_count"`
	TokensJSON    json.RawMessage `json:"tokens_json,omitempty"`
	Email         *string         `json:"email,omitempty"`
	Password      *string         `json:"password,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
	DurationMS    int64           `json:"duration_ms"`
}
