package constants

// RunStatus is the canonical status for rows in runs.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning   RunStatus = "RUNNING"   // in progress
	RunStatusSucceeded RunStatus = "SUCCEEDED" // image written, manifest recorded
	RunStatusFailed    RunStatus = "FAILED"    // terminal failure
)

// AttemptStatus is the canonical status for rows in attempts.
type AttemptStatus string

const (
	AttemptStatusSuccess AttemptStatus = "SUCCESS"
	AttemptStatusFailure AttemptStatus = "FAILURE"
	AttemptStatusSkipped AttemptStatus = "SKIPPED" // never tried: missing binary or credential
)
