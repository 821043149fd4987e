package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered      uint64
	LoginsSucceeded      uint64
	LoginsFailed         uint64
	AuthRejected         uint64
	RateLimited          uint64
	IssuesCreated        uint64
	IssueStatusesChanged uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint.
type InMemoryRecorder struct {
	usersRegistered      atomic.Uint64
	loginsSucceeded      atomic.Uint64
	loginsFailed         atomic.Uint64
	authRejected         atomic.Uint64
	rateLimited          atomic.Uint64
	issuesCreated        atomic.Uint64
	issueStatusesChanged atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:      m.usersRegistered.Load(),
		LoginsSucceeded:      m.loginsSucceeded.Load(),
		LoginsFailed:         m.loginsFailed.Load(),
		AuthRejected:         m.authRejected.Load(),
		RateLimited:          m.rateLimited.Load(),
		IssuesCreated:        m.issuesCreated.Load(),
		IssueStatusesChanged: m.issueStatusesChanged.Load(),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	m.usersRegistered.Add(1)
}

// IncLogin increments the login counter for the given outcome.
// Unknown statuses are counted as failures.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == LoginSuccess {
		m.loginsSucceeded.Add(1)
		return
	}
	m.loginsFailed.Add(1)
}

// IncAuthRejected increments the rejected bearer token counter.
func (m *InMemoryRecorder) IncAuthRejected() {
	m.authRejected.Add(1)
}

// IncRateLimited increments the throttled request counter.
func (m *InMemoryRecorder) IncRateLimited() {
	m.rateLimited.Add(1)
}

// IncIssueCreated increments the issue created counter.
func (m *InMemoryRecorder) IncIssueCreated() {
	m.issuesCreated.Add(1)
}

// IncIssueStatusChanged increments the status change counter.
func (m *InMemoryRecorder) IncIssueStatusChanged() {
	m.issueStatusesChanged.Add(1)
}
