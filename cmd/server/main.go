package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"claimchain/internal/blob"
	"claimchain/internal/credential"
	"claimchain/internal/events"
	issuanceStore "claimchain/internal/issuance/store"
	"claimchain/internal/ledger"
	"claimchain/internal/ledger/devchain"
	"claimchain/internal/ledger/ethrpc"
	"claimchain/internal/orchestrator"
	"claimchain/internal/platform/config"
	"claimchain/internal/platform/database"
	"claimchain/internal/platform/health"
	"claimchain/internal/platform/httpserver"
	"claimchain/internal/platform/kafka/producer"
	"claimchain/internal/platform/logger"
	"claimchain/internal/platform/metrics"
	redisClient "claimchain/internal/platform/redis"
	"claimchain/internal/platform/tracer"
	requestStore "claimchain/internal/policyrequest/store"
	httptransport "claimchain/internal/transport/http"
	"claimchain/migrations"
	"claimchain/pkg/platform/middleware/request"
)

// main wires the orchestrator to its backends, exposes the HTTP router and
// keeps the server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	log.Info("initializing claimchain",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"vc_policy", cfg.VCPolicy,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

type infra struct {
	probes *health.Handler
	log    *slog.Logger

	mu      sync.Mutex
	closers []io.Closer
}

func (in *infra) onClose(c io.Closer) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closers = append(in.closers, c)
}

// close releases backends in reverse order of construction.
func (in *infra) close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i].Close(); err != nil {
			in.log.Warn("failed to close backend", "error", err)
		}
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)
	tr := tracer.NewOTel()

	in := &infra{probes: health.New(cfg.Environment), log: log}
	defer in.close()

	requests, issued, err := buildStores(ctx, cfg, log, reg, appMetrics, tr, in)
	if err != nil {
		return err
	}
	blobs, err := buildBlobStore(cfg, in)
	if err != nil {
		return err
	}
	gateway, err := buildLedger(ctx, cfg, log, appMetrics, tr, in)
	if err != nil {
		return err
	}
	publisher, err := buildPublisher(cfg, log, appMetrics, in)
	if err != nil {
		return err
	}

	credentials := credential.New(keyStoreOpener(cfg.Credential, in), credential.WithLogger(log))
	credentials.Start(ctx)
	in.probes.RegisterCheck("credentials", credentials.Check)

	svc := orchestrator.New(credentials, blobs, gateway, requests, issued,
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(appMetrics),
		orchestrator.WithTracer(tr),
		orchestrator.WithPublisher(publisher),
		orchestrator.WithStrictVCVerification(cfg.StrictVCPolicy()),
	)

	handler := httptransport.New(svc, log)
	router := httptransport.NewRouter(handler, in.probes, log, request.NewMetrics(reg), reg)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func buildStores(
	ctx context.Context,
	cfg config.Server,
	log *slog.Logger,
	reg prometheus.Registerer,
	appMetrics *metrics.Metrics,
	tr tracer.Tracer,
	in *infra,
) (requestStore.Store, issuanceStore.Store, error) {
	var (
		requests requestStore.Store = requestStore.New()
		issued   issuanceStore.Store = issuanceStore.New()
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(ctx, dbCfg)
	if err != nil {
		return nil, nil, err
	}
	if pool != nil {
		in.onClose(pool)
		applied, err := database.Migrate(ctx, pool.DB(), migrations.FS)
		if err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info("database ready", "migrations_applied", len(applied))
		in.probes.RegisterCheck("postgres", pool.Health)
		requests = requestStore.NewPostgres(pool.DB())
		issued = issuanceStore.NewPostgres(pool.DB())
	} else {
		log.Warn("DATABASE_URL not set, policy requests and credential index are kept in memory")
	}

	rdb, err := redisClient.New(ctx, cfg.Redis, reg)
	if err != nil {
		return nil, nil, err
	}
	if rdb != nil {
		in.onClose(rdb)
		in.probes.RegisterCheck("redis", rdb.Health)
		go recordPoolStats(ctx, rdb)
		issued = issuanceStore.NewCachedStore(issued, rdb.Client, cfg.Redis.CacheTTL,
			issuanceStore.WithCacheLogger(log),
			issuanceStore.WithCacheMetrics(appMetrics),
			issuanceStore.WithCacheTracer(tr),
		)
	}
	return requests, issued, nil
}

func recordPoolStats(ctx context.Context, rdb *redisClient.Client) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rdb.RecordPoolStats()
		}
	}
}

func buildBlobStore(cfg config.Server, in *infra) (orchestrator.BlobStore, error) {
	if cfg.Blob.Path == "" {
		return blob.NewMemoryStore(), nil
	}
	store, err := blob.OpenLevelDB(cfg.Blob.Path)
	if err != nil {
		return nil, err
	}
	in.onClose(store)
	return store, nil
}

func buildLedger(
	ctx context.Context,
	cfg config.Server,
	log *slog.Logger,
	appMetrics *metrics.Metrics,
	tr tracer.Tracer,
	in *infra,
) (*ledger.Gateway, error) {
	var (
		backend   ledger.Backend
		addresses ledger.Addresses
	)
	lc := cfg.Ledger

	if lc.RPCURL != "" {
		client, err := ethrpc.Dial(ctx, lc.RPCURL, lc.ChainID)
		if err != nil {
			return nil, err
		}
		in.onClose(closerFunc(func() error { client.Close(); return nil }))
		addrs, err := ledger.ParseAddresses(lc.IdentityRegistryAddress, lc.PolicyContractAddress, lc.ClaimContractAddress)
		if err != nil {
			return nil, err
		}
		backend, addresses = client, addrs
		log.Info("using ledger rpc", "url", lc.RPCURL, "chain_id", lc.ChainID)
	} else {
		opts := []devchain.Option{devchain.WithChainID(lc.ChainID), devchain.WithLogger(log)}
		var (
			chain *devchain.Chain
			err   error
		)
		if lc.DataDir != "" {
			chain, err = devchain.OpenFile(lc.DataDir, opts...)
		} else {
			chain, err = devchain.Open(opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("open embedded ledger: %w", err)
		}
		in.onClose(chain)
		backend, addresses = chain, chain.Addresses()
		log.Warn("LEDGER_RPC_URL not set, using the embedded development ledger", "data_dir", lc.DataDir)
	}

	gateway, err := ledger.New(ctx, backend, addresses,
		ledger.WithLogger(log),
		ledger.WithMetrics(appMetrics),
		ledger.WithTracer(tr),
		ledger.WithConfirmation(lc.ConfirmTimeout, lc.PollInterval),
	)
	if err != nil {
		return nil, err
	}
	in.probes.RegisterCheck("ledger", gateway.Health)
	return gateway, nil
}

func buildPublisher(cfg config.Server, log *slog.Logger, appMetrics *metrics.Metrics, in *infra) (events.Publisher, error) {
	if cfg.Kafka.Brokers == "" {
		log.Info("KAFKA_BROKERS not set, lifecycle events are discarded")
		return events.Noop{}, nil
	}
	prod, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
	if err != nil {
		return nil, err
	}
	in.onClose(prod)
	in.probes.RegisterCheck("kafka", prod.Ping)

	publisher := events.NewKafkaPublisher(prod, cfg.Kafka.Topic,
		events.WithLogger(log),
		events.WithMetrics(appMetrics),
	)
	// Registered after the producer so pending events drain before it closes.
	in.onClose(publisher)
	return publisher, nil
}

// keyStoreOpener opens the LevelDB key store when a path is configured. The
// optional init delay models slow key material backends.
func keyStoreOpener(cfg config.CredentialConfig, in *infra) credential.Opener {
	return func(ctx context.Context) (credential.KeyStore, error) {
		if cfg.InitDelay > 0 {
			select {
			case <-time.After(cfg.InitDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if cfg.KeyStorePath == "" {
			return credential.NewMemoryKeyStore(), nil
		}
		store, err := credential.OpenLevelDBKeyStore(cfg.KeyStorePath)
		if err != nil {
			return nil, err
		}
		in.onClose(store)
		return store, nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
