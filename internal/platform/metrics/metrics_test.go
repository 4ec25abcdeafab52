package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementPolicyRequests()
	m.IncrementCredentialsIssued(true)
	m.IncrementCredentialsIssued(false)
	m.IncrementInsurerAction("approveClaim", OutcomeSuccess)
	m.IncrementSoftWarning("onchain_policy")
	m.ObserveLedgerTransaction("ClaimContract", "submitClaim", OutcomeReverted, 0.2)
	m.ObserveLedgerTransaction("ClaimContract", "submitClaim", OutcomeTimeout, 30)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PolicyRequestsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CredentialsIssued.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InsurerActions.WithLabelValues("approveClaim", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SoftWarnings.WithLabelValues("onchain_policy")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.LedgerTransactions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LedgerConfirmation))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementPolicyRequests()
		m.IncrementClaimsSubmitted()
		m.IncrementCacheLookup("hit")
		m.IncrementEventPublished("claim.submitted", OutcomeSuccess)
		m.ObserveLedgerTransaction("PolicyContract", "issuePolicy", OutcomeSuccess, 1)
	})
}
