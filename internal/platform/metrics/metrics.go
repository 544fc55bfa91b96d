package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the auth gateway.
// All methods are nil-safe so components can run without metrics in tests.
type Metrics struct {
	UsersCreated         prometheus.Counter
	Logins               *prometheus.CounterVec
	RefreshVerifications *prometheus.CounterVec
	CSRFVerifications    *prometheus.CounterVec
	AssertionOutcomes    *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "authgate_users_created_total",
			Help: "Total number of users created in the system",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_logins_total",
			Help: "Login attempts by method and outcome",
		}, []string{"method", "outcome"}),
		RefreshVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_refresh_verifications_total",
			Help: "Refresh token verifications by result status",
		}, []string{"status"}),
		CSRFVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_csrf_verifications_total",
			Help: "Anti-forgery token verifications by result status",
		}, []string{"status"}),
		AssertionOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_identity_assertions_total",
			Help: "Identity provider assertions by reconciliation outcome",
		}, []string{"outcome"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementLogin(method, outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) IncrementRefreshVerification(status string) {
	if m == nil {
		return
	}
	m.RefreshVerifications.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementCSRFVerification(status string) {
	if m == nil {
		return
	}
	m.CSRFVerifications.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementAssertionOutcome(outcome string) {
	if m == nil {
		return
	}
	m.AssertionOutcomes.WithLabelValues(outcome).Inc()
}
