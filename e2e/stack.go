package e2e

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/prometheus/client_golang/prometheus"

	"claimchain/internal/blob"
	"claimchain/internal/credential"
	issuanceStore "claimchain/internal/issuance/store"
	"claimchain/internal/ledger"
	"claimchain/internal/ledger/devchain"
	"claimchain/internal/orchestrator"
	"claimchain/internal/platform/health"
	"claimchain/internal/platform/metrics"
	requestStore "claimchain/internal/policyrequest/store"
	httptransport "claimchain/internal/transport/http"
	"claimchain/pkg/platform/middleware/request"
)

// stack is an in-process server over the embedded ledger and memory stores.
type stack struct {
	server *httptest.Server
	chain  *devchain.Chain
}

func startStack(ctx context.Context) (*stack, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	appMetrics := metrics.New(reg)

	chain, err := devchain.Open(devchain.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	gateway, err := ledger.New(ctx, chain, chain.Addresses(),
		ledger.WithLogger(logger),
		ledger.WithMetrics(appMetrics),
	)
	if err != nil {
		_ = chain.Close()
		return nil, err
	}

	credentials := credential.NewReady(credential.NewMemoryKeyStore(), credential.WithLogger(logger))
	svc := orchestrator.New(credentials, blob.NewMemoryStore(), gateway, requestStore.New(), issuanceStore.New(),
		orchestrator.WithLogger(logger),
		orchestrator.WithMetrics(appMetrics),
	)

	probes := health.New("test")
	probes.RegisterCheck("ledger", gateway.Health)
	probes.RegisterCheck("credentials", credentials.Check)

	router := httptransport.NewRouter(httptransport.New(svc, logger), probes, logger, request.NewMetrics(reg), reg)
	return &stack{server: httptest.NewServer(router), chain: chain}, nil
}

func (s *stack) URL() string {
	return s.server.URL
}

func (s *stack) Close() {
	s.server.Close()
	_ = s.chain.Close()
}
