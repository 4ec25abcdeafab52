// Package credential issues and verifies JWT verifiable credentials for
// did:key identifiers managed by this process.
package credential

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/sentinel"
	platformstrings "claimchain/pkg/platform/strings"
)

// Opener prepares the key store. It runs once, asynchronously, from Start.
type Opener func(ctx context.Context) (KeyStore, error)

// Service is the credential subsystem. Its operations block until the key
// store is open, for at most the configured wait timeout.
type Service struct {
	opener       Opener
	logger       *slog.Logger
	now          func() time.Time
	pollInterval time.Duration
	waitTimeout  time.Duration

	mu      sync.RWMutex
	state   State
	initErr error
	keys    KeyStore
	started bool
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the issuance timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReadinessWait sets the poll interval and the upper bound callers wait
// for initialization. Defaults are 500ms and 10s.
func WithReadinessWait(poll, timeout time.Duration) Option {
	return func(s *Service) {
		if poll > 0 {
			s.pollInterval = poll
		}
		if timeout > 0 {
			s.waitTimeout = timeout
		}
	}
}

// New creates a Service in the initializing state. Call Start to open the key store.
func New(opener Opener, opts ...Option) *Service {
	s := &Service{
		opener:       opener,
		logger:       slog.Default(),
		now:          time.Now,
		pollInterval: 500 * time.Millisecond,
		waitTimeout:  10 * time.Second,
		state:        StateInitializing,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewReady creates a Service that is immediately ready on keys.
func NewReady(keys KeyStore, opts ...Option) *Service {
	s := New(nil, opts...)
	s.keys = keys
	s.state = StateReady
	s.started = true
	return s
}

// Start opens the key store in the background. Subsequent calls are no-ops.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		keys, err := s.opener(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.state = StateFailed
			s.initErr = err
			s.logger.ErrorContext(ctx, "credential service initialization failed", "error", err)
			return
		}
		s.keys = keys
		s.state = StateReady
		s.logger.InfoContext(ctx, "credential service ready")
	}()
}

// Status returns the current readiness snapshot.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{State: s.state, Err: s.initErr}
}

// Check adapts Status to a readiness probe.
func (s *Service) Check(_ context.Context) error {
	st := s.Status()
	switch st.State {
	case StateReady:
		return nil
	case StateFailed:
		return st.Err
	default:
		return errors.New("initializing")
	}
}

// WaitReady polls Status until the service is ready, has failed, or the wait
// timeout elapses. Anything but ready is reported as dependency_unavailable.
func (s *Service) WaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		st := s.Status()
		switch st.State {
		case StateReady:
			return nil
		case StateFailed:
			return dErrors.Wrap(st.Err, dErrors.CodeDependencyUnavailable, "credential service failed to initialize")
		}
		select {
		case <-ctx.Done():
			return dErrors.New(dErrors.CodeDependencyUnavailable, "credential service is initializing, retry later")
		case <-ticker.C:
		}
	}
}

func (s *Service) keyStore() KeyStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys
}

// CreateDID generates an ed25519 key pair, stores it and returns its did:key.
func (s *Service) CreateDID(ctx context.Context) (string, error) {
	if err := s.WaitReady(ctx); err != nil {
		return "", err
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "generate key")
	}
	did := DIDFromPublicKey(pub)
	if err := s.keyStore().Put(ctx, did, priv); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "store key")
	}
	return did, nil
}

// Issue signs cred as issuerDID. The issuer must be a DID created by this service.
func (s *Service) Issue(ctx context.Context, issuerDID string, cred Credential) (*VerifiableCredential, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	if len(cred.CredentialSubject) == 0 {
		return nil, dErrors.New(dErrors.CodeMissingField, "credential.credentialSubject is required")
	}

	key, err := s.keyStore().Get(ctx, issuerDID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("issuer %s is not managed by this service", issuerDID))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load issuer key")
	}

	types := platformstrings.DedupeAndTrim(append([]string{typeVC}, cred.Type...))

	issuedAt := s.now().UTC().Truncate(time.Second)
	vc := &VerifiableCredential{
		Context:           []string{contextV1},
		Type:              types,
		Issuer:            issuerDID,
		IssuanceDate:      issuedAt,
		ExpirationDate:    cred.ExpirationDate,
		CredentialSubject: cred.CredentialSubject,
	}

	claims := vcClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerDID,
			Subject:   vc.Subject(),
			ID:        "urn:uuid:" + uuid.NewString(),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
		VC: vcPayload{
			Context:           vc.Context,
			Type:              vc.Type,
			CredentialSubject: vc.CredentialSubject,
		},
	}
	if cred.ExpirationDate != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*cred.ExpirationDate)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = verificationMethod(issuerDID)
	signed, err := token.SignedString(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sign credential")
	}
	vc.Proof = Proof{Type: proofTypeJWT, JWT: signed}
	return vc, nil
}

// Verify checks a JWT-VC signature against the key embedded in its issuer DID.
func (s *Service) Verify(ctx context.Context, vcJWT string) (*VerificationResult, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}

	claims := &vcClaims{}
	_, err := jwt.ParseWithClaims(vcJWT, claims, func(t *jwt.Token) (any, error) {
		return PublicKeyFromDID(claims.Issuer)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return &VerificationResult{Verified: false, Error: err.Error()}, nil
	}

	vc := &VerifiableCredential{
		Context:           claims.VC.Context,
		Type:              claims.VC.Type,
		Issuer:            claims.Issuer,
		CredentialSubject: claims.VC.CredentialSubject,
		Proof:             Proof{Type: proofTypeJWT, JWT: vcJWT},
	}
	if claims.NotBefore != nil {
		vc.IssuanceDate = claims.NotBefore.UTC()
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.UTC()
		vc.ExpirationDate = &exp
	}
	return &VerificationResult{
		Verified:   true,
		Issuer:     claims.Issuer,
		Subject:    claims.Subject,
		Credential: vc,
	}, nil
}

// VerifyDocument verifies a stored credential document: the embedded JWT must
// verify and agree with the document's issuer and subject.
func (s *Service) VerifyDocument(ctx context.Context, vc *VerifiableCredential) (*VerificationResult, error) {
	if vc == nil || vc.Proof.JWT == "" {
		return &VerificationResult{Verified: false, Error: "credential has no jwt proof"}, nil
	}
	res, err := s.Verify(ctx, vc.Proof.JWT)
	if err != nil || !res.Verified {
		return res, err
	}
	if res.Issuer != vc.Issuer {
		return &VerificationResult{Verified: false, Issuer: res.Issuer, Error: "document issuer does not match proof"}, nil
	}
	if res.Subject != vc.Subject() {
		return &VerificationResult{Verified: false, Subject: res.Subject, Error: "document subject does not match proof"}, nil
	}
	return res, nil
}
