package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"claimchain/internal/policyrequest/models"
	"claimchain/pkg/platform/sentinel"
)

// PostgresStore persists the queue in PostgreSQL. Ids come from a BIGSERIAL,
// so insertion order and id order agree.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed queue.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `
	id, patient_did, patient_address, coverage_amount::text, details,
	status, created_at, issued_at, policy_ref, vc_cid
`

func (s *PostgresStore) Append(ctx context.Context, req *models.PolicyRequest) (*models.PolicyRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("policy request is required")
	}
	payload := req.Details
	if payload == nil {
		payload = map[string]any{}
	}
	details, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request details: %w", err)
	}
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO policy_requests (patient_did, patient_address, coverage_amount, details, status, created_at)
		VALUES ($1, $2, $3::numeric, $4::jsonb, 'pending', $5)
		RETURNING ` + selectColumns
	stored, err := scanRequest(s.db.QueryRowContext(ctx, query,
		req.PatientDID,
		req.PatientAddress,
		req.CoverageAmount.String(),
		string(details),
		createdAt,
	))
	if err != nil {
		return nil, fmt.Errorf("append policy request: %w", err)
	}
	return stored, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.PolicyRequest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM policy_requests ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list policy requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.PolicyRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy requests: %w", err)
	}
	return requests, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.PolicyRequest, error) {
	req, err := scanRequest(s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM policy_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find policy request: %w", err)
	}
	return req, nil
}

// UpdateStatus issues a pending request. The status guard lives in the
// UPDATE itself, so concurrent issuers cannot both succeed.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, status models.Status, iss models.Issuance) (*models.PolicyRequest, error) {
	if status != models.StatusIssued {
		return nil, fmt.Errorf("transition to %q: %w", status, sentinel.ErrInvalidInput)
	}
	query := `
		UPDATE policy_requests
		SET status = 'issued', issued_at = $2, policy_ref = $3, vc_cid = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + selectColumns
	req, err := scanRequest(s.db.QueryRowContext(ctx, query, id, iss.IssuedAt, iss.PolicyRef, iss.VCCID))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update policy request status: %w", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM policy_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check policy request: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return nil, sentinel.ErrInvalidState
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.PolicyRequest, error) {
	var (
		req       models.PolicyRequest
		coverage  string
		details   []byte
		status    string
		issuedAt  sql.NullTime
		policyRef sql.NullString
		vcCID     sql.NullString
	)
	if err := row.Scan(
		&req.ID,
		&req.PatientDID,
		&req.PatientAddress,
		&coverage,
		&details,
		&status,
		&req.CreatedAt,
		&issuedAt,
		&policyRef,
		&vcCID,
	); err != nil {
		return nil, err
	}

	amount, ok := new(big.Int).SetString(coverage, 10)
	if !ok {
		return nil, fmt.Errorf("invalid coverage amount %q", coverage)
	}
	req.CoverageAmount = amount
	req.Details = map[string]any{}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &req.Details); err != nil {
			return nil, fmt.Errorf("decode request details: %w", err)
		}
	}
	if req.Details == nil {
		req.Details = map[string]any{}
	}
	req.Status = models.Status(status)
	if issuedAt.Valid {
		t := issuedAt.Time
		req.IssuedAt = &t
	}
	req.PolicyRef = policyRef.String
	req.VCCID = vcCID.String
	return &req, nil
}
