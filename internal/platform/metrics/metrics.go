package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application level Prometheus collectors.
// All methods are safe on a nil receiver so components can run unmetered in tests.
type Metrics struct {
	PolicyRequestsCreated prometheus.Counter
	CredentialsIssued     *prometheus.CounterVec
	ClaimsSubmitted       prometheus.Counter
	InsurerActions        *prometheus.CounterVec
	SoftWarnings          *prometheus.CounterVec

	LedgerTransactions *prometheus.CounterVec
	LedgerConfirmation *prometheus.HistogramVec

	CacheLookups    *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PolicyRequestsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "claimchain_policy_requests_created_total",
			Help: "Total number of policy requests appended to the queue",
		}),
		CredentialsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "claimchain_credentials_issued_total",
			Help: "Total number of policy credentials issued, labeled by whether an on-chain policy was created",
		}, []string{"onchain"}),
		ClaimsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "claimchain_claims_submitted_total",
			Help: "Total number of claims submitted to the ledger",
		}),
		InsurerActions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "claimchain_insurer_actions_total",
			Help: "Total number of insurer actions, labeled by action and outcome",
		}, []string{"action", "outcome"}),
		SoftWarnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "claimchain_soft_warnings_total",
			Help: "Total number of soft warnings attached to composite results, labeled by kind",
		}, []string{"kind"}),
		LedgerTransactions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "claimchain_ledger_transactions_total",
			Help: "Total number of ledger transactions, labeled by contract, method and outcome",
		}, []string{"contract", "method", "outcome"}),
		LedgerConfirmation: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claimchain_ledger_confirmation_seconds",
			Help:    "Time from submission to receipt, labeled by contract",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"contract"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "claimchain_credential_cache_lookups_total",
			Help: "Issued credential cache lookups, labeled by result (hit, miss, error, bypass)",
		}, []string{"result"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "claimchain_events_published_total",
			Help: "Lifecycle events published, labeled by event type and outcome",
		}, []string{"type", "outcome"}),
	}
}

func (m *Metrics) IncrementPolicyRequests() {
	if m == nil {
		return
	}
	m.PolicyRequestsCreated.Inc()
}

func (m *Metrics) IncrementCredentialsIssued(onchain bool) {
	if m == nil {
		return
	}
	m.CredentialsIssued.WithLabelValues(boolLabel(onchain)).Inc()
}

func (m *Metrics) IncrementClaimsSubmitted() {
	if m == nil {
		return
	}
	m.ClaimsSubmitted.Inc()
}

func (m *Metrics) IncrementInsurerAction(action, outcome string) {
	if m == nil {
		return
	}
	m.InsurerActions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) IncrementSoftWarning(kind string) {
	if m == nil {
		return
	}
	m.SoftWarnings.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveLedgerTransaction(contract, method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.LedgerTransactions.WithLabelValues(contract, method, outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeReverted {
		m.LedgerConfirmation.WithLabelValues(contract).Observe(seconds)
	}
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementEventPublished(eventType, outcome string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, outcome).Inc()
}

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeReverted = "reverted"
	OutcomeTimeout  = "timeout"
	OutcomeDropped  = "dropped"
)

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
