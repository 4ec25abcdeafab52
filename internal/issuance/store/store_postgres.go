package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"claimchain/internal/credential"
	"claimchain/internal/issuance/models"
	"claimchain/internal/platform/database"
	"claimchain/pkg/platform/sentinel"
)

// PostgresStore persists the index in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `policy_ref, request_id, vc, cid, onchain_policy_id::text, issued_at`

func (s *PostgresStore) Save(ctx context.Context, rec *models.Record) error {
	if rec == nil {
		return fmt.Errorf("issued credential record is required")
	}
	vc, err := json.Marshal(rec.VC)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	var onchain sql.NullString
	if rec.OnchainPolicyID != nil {
		onchain = sql.NullString{String: rec.OnchainPolicyID.String(), Valid: true}
	}

	query := `
		INSERT INTO issued_credentials (policy_ref, request_id, vc, cid, onchain_policy_id, issued_at)
		VALUES ($1, $2, $3::jsonb, $4, $5::numeric, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.PolicyRef,
		rec.RequestID,
		string(vc),
		rec.CID,
		onchain,
		rec.IssuedAt,
	)
	if err != nil {
		if index, ok := database.UniqueViolation(err); ok {
			return collision(index)
		}
		return fmt.Errorf("save issued credential: %w", err)
	}
	return nil
}

func collision(index string) error {
	switch index {
	case "idx_issued_credentials_request":
		return models.ErrRequestIndexed
	case "idx_issued_credentials_onchain_policy":
		return models.ErrOnchainPolicyIndexed
	default:
		return models.ErrPolicyRefTaken
	}
}

func (s *PostgresStore) FindByPolicyRef(ctx context.Context, policyRef string) (*models.Record, error) {
	return s.findOne(ctx, `SELECT `+selectColumns+` FROM issued_credentials WHERE policy_ref = $1`, policyRef)
}

func (s *PostgresStore) FindByOnchainPolicyID(ctx context.Context, policyID *big.Int) (*models.Record, error) {
	if policyID == nil {
		return nil, sentinel.ErrNotFound
	}
	return s.findOne(ctx,
		`SELECT `+selectColumns+` FROM issued_credentials WHERE onchain_policy_id = $1::numeric`,
		policyID.String())
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Record, error) {
	var (
		rec       models.Record
		requestID sql.NullInt64
		vc        []byte
		onchain   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&rec.PolicyRef,
		&requestID,
		&vc,
		&rec.CID,
		&onchain,
		&rec.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issued credential: %w", err)
	}

	if requestID.Valid {
		id := requestID.Int64
		rec.RequestID = &id
	}
	rec.VC = &credential.VerifiableCredential{}
	if err := json.Unmarshal(vc, rec.VC); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	if onchain.Valid {
		id, ok := new(big.Int).SetString(onchain.String, 10)
		if !ok {
			return nil, fmt.Errorf("invalid onchain policy id %q", onchain.String)
		}
		rec.OnchainPolicyID = id
	}
	return &rec, nil
}
