package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"claimchain/internal/credential"
	"claimchain/internal/issuance/models"
	"claimchain/internal/platform/metrics"
	"claimchain/internal/platform/tracer"
	"claimchain/pkg/platform/circuit"
)

const (
	redisRefKeyPrefix     = "claimchain:vc:ref:"
	redisOnchainKeyPrefix = "claimchain:vc:onchain:"
)

// Cache lookup results.
const (
	cacheHit    = "hit"
	cacheMiss   = "miss"
	cacheBypass = "bypass"
	cacheError  = "error"
)

// CachedStore is a read-through Redis cache in front of a Store. Redis is
// optional: failures are logged and counted, and after repeated failures
// the breaker routes lookups straight to the backing store.
type CachedStore struct {
	store   Store
	client  *redis.Client
	ttl     time.Duration
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
}

type CacheOption func(*CachedStore)

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *CachedStore) { c.metrics = m }
}

func WithCacheTracer(t tracer.Tracer) CacheOption {
	return func(c *CachedStore) { c.tracer = t }
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedStore) { c.logger = logger }
}

func WithBreaker(b *circuit.Breaker) CacheOption {
	return func(c *CachedStore) { c.breaker = b }
}

// NewCachedStore wraps store with a Redis cache whose entries expire after ttl.
func NewCachedStore(store Store, client *redis.Client, ttl time.Duration, opts ...CacheOption) *CachedStore {
	c := &CachedStore{
		store:   store,
		client:  client,
		ttl:     ttl,
		breaker: circuit.New("credential_cache"),
		tracer:  tracer.NewNoop(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save writes through to the backing store, then primes the cache.
func (c *CachedStore) Save(ctx context.Context, rec *models.Record) error {
	if err := c.store.Save(ctx, rec); err != nil {
		return err
	}
	c.set(ctx, rec)
	return nil
}

func (c *CachedStore) FindByPolicyRef(ctx context.Context, policyRef string) (*models.Record, error) {
	return c.lookup(ctx, redisRefKeyPrefix+policyRef, func(ctx context.Context) (*models.Record, error) {
		return c.store.FindByPolicyRef(ctx, policyRef)
	})
}

func (c *CachedStore) FindByOnchainPolicyID(ctx context.Context, policyID *big.Int) (*models.Record, error) {
	if policyID == nil {
		return c.store.FindByOnchainPolicyID(ctx, nil)
	}
	return c.lookup(ctx, redisOnchainKeyPrefix+policyID.String(), func(ctx context.Context) (*models.Record, error) {
		return c.store.FindByOnchainPolicyID(ctx, policyID)
	})
}

func (c *CachedStore) lookup(ctx context.Context, key string, load func(context.Context) (*models.Record, error)) (rec *models.Record, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanCredentialLoad)
	defer func() { span.End(err) }()

	if cached, ok := c.get(ctx, key); ok {
		span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
		return cached, nil
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))

	rec, err = load(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, rec)
	return rec, nil
}

func (c *CachedStore) get(ctx context.Context, key string) (*models.Record, bool) {
	if !c.breaker.Allow() {
		c.metrics.IncrementCacheLookup(cacheBypass)
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.succeeded(ctx)
			c.metrics.IncrementCacheLookup(cacheMiss)
			return nil, false
		}
		c.failed(ctx, "get", err)
		return nil, false
	}
	c.succeeded(ctx)

	rec, err := decodeEntry(data)
	if err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", err)
		c.metrics.IncrementCacheLookup(cacheMiss)
		return nil, false
	}
	c.metrics.IncrementCacheLookup(cacheHit)
	return rec, true
}

func (c *CachedStore) set(ctx context.Context, rec *models.Record) {
	if rec == nil || !c.breaker.Allow() {
		return
	}
	payload, err := encodeEntry(rec)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode cache entry", "policy_ref", rec.PolicyRef, "error", err)
		return
	}
	_, err = c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, redisRefKeyPrefix+rec.PolicyRef, payload, c.ttl)
		if rec.OnchainPolicyID != nil {
			p.Set(ctx, redisOnchainKeyPrefix+rec.OnchainPolicyID.String(), payload, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.failed(ctx, "set", err)
		return
	}
	c.succeeded(ctx)
}

func (c *CachedStore) failed(ctx context.Context, op string, err error) {
	c.metrics.IncrementCacheLookup(cacheError)
	change := c.breaker.RecordFailure()
	c.logger.WarnContext(ctx, "credential cache unavailable", "op", op, "error", err)
	if change.Opened {
		c.logger.ErrorContext(ctx, "circuit breaker opened", "circuit", c.breaker.Name())
	}
}

func (c *CachedStore) succeeded(ctx context.Context) {
	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "circuit breaker closed", "circuit", c.breaker.Name())
	}
}

type cacheEntry struct {
	PolicyRef       string                           `json:"policyRef"`
	RequestID       *int64                           `json:"requestId,omitempty"`
	VC              *credential.VerifiableCredential `json:"vc"`
	CID             string                           `json:"cid"`
	OnchainPolicyID string                           `json:"onchainPolicyId,omitempty"`
	IssuedAt        time.Time                        `json:"issuedAt"`
}

func encodeEntry(rec *models.Record) ([]byte, error) {
	entry := cacheEntry{
		PolicyRef: rec.PolicyRef,
		RequestID: rec.RequestID,
		VC:        rec.VC,
		CID:       rec.CID,
		IssuedAt:  rec.IssuedAt,
	}
	if rec.OnchainPolicyID != nil {
		entry.OnchainPolicyID = rec.OnchainPolicyID.String()
	}
	return json.Marshal(entry)
}

func decodeEntry(data []byte) (*models.Record, error) {
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	rec := &models.Record{
		PolicyRef: entry.PolicyRef,
		RequestID: entry.RequestID,
		VC:        entry.VC,
		CID:       entry.CID,
		IssuedAt:  entry.IssuedAt,
	}
	if entry.OnchainPolicyID != "" {
		id, ok := new(big.Int).SetString(entry.OnchainPolicyID, 10)
		if !ok {
			return nil, fmt.Errorf("invalid onchain policy id %q", entry.OnchainPolicyID)
		}
		rec.OnchainPolicyID = id
	}
	return rec, nil
}
