package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	FeatureSingleWalletMigration = "single-wallet-migration"
	FeatureMultiWalletMigration  = "multi-wallet-migration"
)

// FeeOracleClient client for the fee exemption service
type FeeOracleClient struct {
	baseURL string
	client  *http.Client
}

// NewFeeOracleClient creates a new fee oracle client.
// An empty baseURL yields a client that never grants exemptions.
func NewFeeOracleClient(baseURL string) *FeeOracleClient {
	return &FeeOracleClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// exemptionResponse response from the fee oracle
type exemptionResponse struct {
	Exempt bool `json:"exempt"`
}

// IsExempt asks whether inviteCode waives the service fee for feature.
func (c *FeeOracleClient) IsExempt(ctx context.Context, feature, inviteCode string) (bool, error) {
	if c.baseURL == "" || strings.TrimSpace(inviteCode) == "" {
		return false, nil
	}

	q := url.Values{}
	q.Set("feature", feature)
	q.Set("code", inviteCode)
	endpoint := fmt.Sprintf("%s/fee-exemption?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build exemption request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to check exemption: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("failed to check exemption: status %d", resp.StatusCode)
	}

	var out exemptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode exemption: %w", err)
	}
	return out.Exempt, nil
}
