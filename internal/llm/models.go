package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// RemoteModel is a model advertised by the endpoint's /models listing.
type RemoteModel struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
}

type modelsResponse struct {
	Data []RemoteModel `json:"data"`
}

// ModelsURL derives the models listing URL from a chat-completions URL.
func ModelsURL(endpoint string) string {
	base := strings.TrimRight(endpoint, "/")
	base = strings.TrimSuffix(base, "/chat/completions")
	return base + "/models"
}

// ListModels queries the endpoint's /models listing, sorted by id.
func (c *Client) ListModels(ctx context.Context) ([]RemoteModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ModelsURL(c.endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("create models request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var result modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ParseError{Reason: "decode models", Err: err}
	}
	sort.Slice(result.Data, func(i, j int) bool { return result.Data[i].ID < result.Data[j].ID })
	return result.Data, nil
}
