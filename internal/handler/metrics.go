package handler

import (
	"fmt"
	"net/http"

	"github.com/civicreport/civicreport/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "civicreport_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "civicreport_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "civicreport_logins_total{status=\"failure\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "civicreport_auth_rejected_total %d\n", snap.AuthRejected)
	writeMetric(w, "civicreport_rate_limited_total %d\n", snap.RateLimited)

	writeMetric(w, "civicreport_issues_created_total %d\n", snap.IssuesCreated)
	writeMetric(w, "civicreport_issue_status_changes_total %d\n", snap.IssueStatusesChanged)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
