package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type HTTPStateProvider struct {
	client  *http.Client
	feedURL string
}

func NewHTTPStateProvider(feedURL string) *HTTPStateProvider {
	return &HTTPStateProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		feedURL: feedURL,
	}
}

func (p *HTTPStateProvider) ListStates(ctx context.Context) ([]*State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch states feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("states feed returned %d", resp.StatusCode)
	}

	var payload []struct {
		Name string   `json:"name"`
		LGAs []string `json:"lgas"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid states feed: %w", err)
	}

	states := make([]*State, len(payload))
	for i, s := range payload {
		states[i] = &State{Name: s.Name, LGAs: s.LGAs}
	}

	return states, nil
}
