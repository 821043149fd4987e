// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Login outcomes passed to Recorder.IncLogin.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Credential metrics
	IncUserRegistered()
	IncLogin(status string) // status: "success" or "failure"

	// Access guard metrics
	IncAuthRejected()
	IncRateLimited()

	// Issue metrics
	IncIssueCreated()
	IncIssueStatusChanged()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
