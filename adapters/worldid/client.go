package worldid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/seedvault/core"
)

// DefaultBaseURL is the World ID developer portal API
const DefaultBaseURL = "https://developer.worldcoin.org"

// Client verifies World ID proofs with the cloud verification API
type Client struct {
	baseURL    string
	appID      string
	action     string
	httpClient *http.Client
}

// NewClient creates a client for the app. When action is set every proof is
// verified against it; otherwise the proof's own action is used.
func NewClient(baseURL, appID, action string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		appID:      appID,
		action:     action,
		httpClient: httpClient,
	}
}

type verifyRequest struct {
	NullifierHash     string `json:"nullifier_hash"`
	MerkleRoot        string `json:"merkle_root"`
	Proof             string `json:"proof"`
	VerificationLevel string `json:"verification_level"`
	Action            string `json:"action"`
	SignalHash        string `json:"signal_hash"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Detail  string `json:"detail"`
}

// VerifyProof asks the portal whether the proof is valid for this app and
// action. A rejected proof wraps core.ErrVerificationFailed, an unreachable
// or failing portal wraps core.ErrUpstream.
func (c *Client) VerifyProof(ctx context.Context, proof core.Proof) error {
	// Nullifier hashes are scoped per action; callers may not pick their own.
	action := c.action
	if action == "" {
		action = proof.Action
	} else if proof.Action != "" && proof.Action != action {
		return fmt.Errorf("action %q is not accepted: %w", proof.Action, core.ErrVerificationFailed)
	}

	body, err := json.Marshal(verifyRequest{
		NullifierHash:     proof.NullifierHash,
		MerkleRoot:        proof.MerkleRoot,
		Proof:             proof.Proof,
		VerificationLevel: string(proof.Level),
		Action:            action,
		SignalHash:        HashToField(proof.Signal),
	})
	if err != nil {
		return fmt.Errorf("failed to encode proof: %w", err)
	}

	url := fmt.Sprintf("%s/api/v2/verify/%s", c.baseURL, c.appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach verification api: %v: %w", err, core.ErrUpstream)
	}
	defer resp.Body.Close()

	var out verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil && resp.StatusCode < 500 {
		return fmt.Errorf("failed to decode verification response: %v: %w", err, core.ErrUpstream)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("verification api returned %d: %w", resp.StatusCode, core.ErrUpstream)
	case resp.StatusCode == http.StatusOK && out.Success:
		return nil
	default:
		return fmt.Errorf("%s: %s: %w", out.Code, out.Detail, core.ErrVerificationFailed)
	}
}

// HashToField hashes a signal the way World ID expects: keccak256 shifted
// right by 8 bits so it fits the field.
func HashToField(signal string) string {
	h := new(big.Int).SetBytes(crypto.Keccak256([]byte(signal)))
	h.Rsh(h, 8)
	return fmt.Sprintf("0x%064x", h)
}
