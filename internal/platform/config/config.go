package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// VC verification policies applied during claim submission.
const (
	VCPolicyLenient = "lenient"
	VCPolicyStrict  = "strict"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	VCPolicy        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Blob        BlobConfig
	Ledger      LedgerConfig
	Credential  CredentialConfig
}

// RedisConfig configures the optional credential cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig configures the lifecycle event publisher.
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// BlobConfig selects the blob store backend. An empty Path keeps blobs in memory.
type BlobConfig struct {
	Path string
}

// LedgerConfig selects between a JSON-RPC node and the embedded development ledger.
// When RPCURL is empty the embedded ledger is used, journaled under DataDir.
type LedgerConfig struct {
	RPCURL                  string
	DataDir                 string
	ChainID                 int64
	IdentityRegistryAddress string
	PolicyContractAddress   string
	ClaimContractAddress    string
	ConfirmTimeout          time.Duration
	PollInterval            time.Duration
}

// CredentialConfig configures the credential service key store.
type CredentialConfig struct {
	KeyStorePath string
	InitDelay    time.Duration
}

// CacheTTL bounds how long issued credentials stay in Redis.
var CacheTTL = 10 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CLAIMCHAIN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	vcPolicy := strings.ToLower(os.Getenv("CLAIM_VC_POLICY"))
	if vcPolicy != VCPolicyStrict {
		vcPolicy = VCPolicyLenient
	}

	if ttl := duration("CACHE_TTL", 0); ttl > 0 {
		CacheTTL = ttl
	}

	return Server{
		Addr:            addr,
		Environment:     stringOr("ENVIRONMENT", "development"),
		LogLevel:        stringOr("LOG_LEVEL", "info"),
		VCPolicy:        vcPolicy,
		RequestTimeout:  duration("REQUEST_TIMEOUT", 60*time.Second),
		ShutdownTimeout: duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     CacheTTL,
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   stringOr("KAFKA_TOPIC", "claimchain.lifecycle"),
		},
		Blob: BlobConfig{
			Path: os.Getenv("BLOB_STORE_PATH"),
		},
		Ledger: LedgerConfig{
			RPCURL:                  os.Getenv("LEDGER_RPC_URL"),
			DataDir:                 os.Getenv("LEDGER_DATA_DIR"),
			ChainID:                 int64(intOr("LEDGER_CHAIN_ID", 1337)),
			IdentityRegistryAddress: os.Getenv("IDENTITY_REGISTRY_ADDRESS"),
			PolicyContractAddress:   os.Getenv("POLICY_CONTRACT_ADDRESS"),
			ClaimContractAddress:    os.Getenv("CLAIM_CONTRACT_ADDRESS"),
			ConfirmTimeout:          duration("LEDGER_CONFIRM_TIMEOUT", 30*time.Second),
			PollInterval:            duration("LEDGER_POLL_INTERVAL", 500*time.Millisecond),
		},
		Credential: CredentialConfig{
			KeyStorePath: os.Getenv("CREDENTIAL_KEYSTORE_PATH"),
			InitDelay:    duration("CREDENTIAL_INIT_DELAY", 0),
		},
	}
}

// StrictVCPolicy reports whether claim submission must reject unverifiable credentials.
func (s Server) StrictVCPolicy() bool {
	return s.VCPolicy == VCPolicyStrict
}

func stringOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
