package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dkosiv/shardpay/internal/domain"
)

// Client is an HTTP client for the identity registry's read API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new identity registry client. timeout bounds every
// request; the enrichment path additionally applies its own budget.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetByAccount fetches identity attributes for the person owning the
// given account.
func (c *Client) GetByAccount(ctx context.Context, accountID string) (*domain.Identity, error) {
	url := fmt.Sprintf("%s/v1/persons/by-account/%s", c.baseURL, accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: registry returned status %d", domain.ErrIdentityUnavailable, resp.StatusCode)
	}

	var identity domain.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("%w: invalid registry response: %v", domain.ErrIdentityUnavailable, err)
	}

	return &identity, nil
}
