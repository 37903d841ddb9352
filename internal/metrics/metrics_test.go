package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Subscription(OutcomeSubscribed)
	m.Subscription(OutcomeSubscribed)
	m.Subscription(OutcomeInsufficient)
	m.LedgerEntry("DEPOSITO")
	m.Notification(StatusFailed)
	m.Conflict()

	if got := testutil.ToFloat64(m.Subscriptions.WithLabelValues(OutcomeSubscribed)); got != 2 {
		t.Errorf("Expected 2 subscriptions, got %v", got)
	}
	if got := testutil.ToFloat64(m.Subscriptions.WithLabelValues(OutcomeInsufficient)); got != 1 {
		t.Errorf("Expected 1 insufficient, got %v", got)
	}
	if got := testutil.ToFloat64(m.LedgerEntries.WithLabelValues("DEPOSITO")); got != 1 {
		t.Errorf("Expected 1 deposit entry, got %v", got)
	}
	if got := testutil.ToFloat64(m.Notifications.WithLabelValues(StatusFailed)); got != 1 {
		t.Errorf("Expected 1 failed notification, got %v", got)
	}
	if got := testutil.ToFloat64(m.LedgerConflicts); got != 1 {
		t.Errorf("Expected 1 conflict, got %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	m.Subscription(OutcomeFailed)
	m.LedgerEntry("APERTURA")
	m.Notification(StatusPublished)
	m.Conflict()
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Conflict()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ledger_write_conflicts_total 1") {
		t.Errorf("Expected conflict counter in output, got %s", w.Body.String())
	}
}
