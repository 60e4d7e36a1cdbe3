// internal/clients/profile_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"coolkidsnetwork/internal/membership"
)

// ProfileClient fetches enrichment candidates from a randomuser.me
// style endpoint.
type ProfileClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProfileClient creates a profile source client. Every request is
// bounded by the given timeout.
func NewProfileClient(baseURL string, timeout time.Duration) *ProfileClient {
	return &ProfileClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type profileResponse struct {
	Results []struct {
		Name struct {
			First string `json:"first"`
			Last  string `json:"last"`
		} `json:"name"`
		Location struct {
			Country string `json:"country"`
		} `json:"location"`
	} `json:"results"`
}

// FetchProfile requests one candidate (first, last, country) triple.
func (c *ProfileClient) FetchProfile(ctx context.Context) (*membership.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}

	if len(payload.Results) == 0 {
		// An empty result set is a contract violation, not a transport
		// failure; the enroller maps it to a malformed-profile abort.
		return &membership.Profile{}, nil
	}

	result := payload.Results[0]
	return &membership.Profile{
		FirstName: result.Name.First,
		LastName:  result.Name.Last,
		Country:   result.Location.Country,
	}, nil
}
