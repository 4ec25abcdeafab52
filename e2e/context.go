package e2e

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Actor is a participant with a ledger account and, once created, a DID.
type Actor struct {
	Name    string
	Key     *ecdsa.PrivateKey
	Account string
	DID     string
}

// PrivateKey returns the 0x-prefixed hex key sent to the on-chain endpoints.
func (a *Actor) PrivateKey() string {
	return hexutil.Encode(crypto.FromECDSA(a.Key))
}

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	Actors map[string]*Actor
	Saved  map[string]string

	stack *stack
}

// NewTestContext targets BASE_URL when set and otherwise starts an
// in-process server with a fresh embedded ledger.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	tc := &TestContext{
		BaseURL:    os.Getenv("BASE_URL"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Actors:     make(map[string]*Actor),
		Saved:      make(map[string]string),
	}
	if tc.BaseURL == "" {
		st, err := startStack(ctx)
		if err != nil {
			return nil, fmt.Errorf("start in-process stack: %w", err)
		}
		tc.stack = st
		tc.BaseURL = st.URL()
	}
	return tc, nil
}

// Close stops the in-process server, if any.
func (tc *TestContext) Close() {
	if tc.stack != nil {
		tc.stack.Close()
	}
}

// Actor returns the named actor, creating its ledger account on first use.
func (tc *TestContext) Actor(name string) (*Actor, error) {
	if a, ok := tc.Actors[name]; ok {
		return a, nil
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	a := &Actor{Name: name, Key: key, Account: crypto.PubkeyToAddress(key.PublicKey).Hex()}
	tc.Actors[name] = a
	return a, nil
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response. Nested fields
// are addressed with dots, e.g. "request.status".
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	for _, part := range strings.Split(field, ".") {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
		if data, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}
	return data, nil
}

// GetResponseString renders a response field as a string.
func (tc *TestContext) GetResponseString(field string) (string, error) {
	v, err := tc.GetResponseField(field)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case nil:
		return "", fmt.Errorf("field %s is null", field)
	default:
		return fmt.Sprint(t), nil
	}
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}
	_, err := tc.GetResponseField(text)
	return err == nil
}

// Account returns the named actor's address and hex private key.
func (tc *TestContext) Account(name string) (account, privateKey string, err error) {
	a, err := tc.Actor(name)
	if err != nil {
		return "", "", err
	}
	return a.Account, a.PrivateKey(), nil
}

func (tc *TestContext) DID(name string) (string, error) {
	a, ok := tc.Actors[name]
	if !ok || a.DID == "" {
		return "", fmt.Errorf("%s has no DID yet", name)
	}
	return a.DID, nil
}

func (tc *TestContext) SetDID(name, did string) error {
	a, err := tc.Actor(name)
	if err != nil {
		return err
	}
	a.DID = did
	return nil
}

func (tc *TestContext) Save(name, value string) {
	tc.Saved[name] = value
}

func (tc *TestContext) Lookup(name string) (string, error) {
	v, ok := tc.Saved[name]
	if !ok {
		return "", fmt.Errorf("nothing saved as %q", name)
	}
	return v, nil
}

// Resolve returns the value saved under name, or name itself.
func (tc *TestContext) Resolve(name string) string {
	if v, ok := tc.Saved[name]; ok {
		return v
	}
	return name
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
