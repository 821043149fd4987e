package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncAuthRejected is a no-op.
func (n *NoopRecorder) IncAuthRejected() {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}

// IncIssueCreated is a no-op.
func (n *NoopRecorder) IncIssueCreated() {}

// IncIssueStatusChanged is a no-op.
func (n *NoopRecorder) IncIssueStatusChanged() {}
