package constants

// JobStatus is the canonical status for rows in parse_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"    // waiting for a worker
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusTokenized JobStatus = "TOKENIZED" // stage 1 completed (token stream persisted)
	JobStatusParsed    JobStatus = "PARSED"    // stage 2 completed (fields extracted)
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)
