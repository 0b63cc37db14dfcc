package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/patrickmn/go-cache"
)

const modelsCacheKey = "models"

// modelEntry covers both listing formats. OpenAI sends created as unix
// seconds, Anthropic sends created_at as RFC 3339 with a display_name.
type modelEntry struct {
	ID          string `json:"id"`
	OwnedBy     string `json:"owned_by"`
	Created     int64  `json:"created"`
	CreatedAt   string `json:"created_at"`
	DisplayName string `json:"display_name"`
}

type modelsResponse struct {
	Data []modelEntry `json:"data"`
}

func (e modelEntry) info() *aisdk.ModelInfo {
	m := &aisdk.ModelInfo{ID: e.ID, Name: e.DisplayName, OwnedBy: e.OwnedBy, Created: e.Created}
	if m.Name == "" {
		m.Name = e.ID
	}
	if m.Created == 0 && e.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
			m.Created = t.Unix()
		}
	}
	return m
}

// GetModels implements aisdk.Provider.
func (c *Client) GetModels(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	return c.ListModels(ctx)
}

// ListModels returns the provider's models, cached for an hour.
func (c *Client) ListModels(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	if cached, ok := c.models.Get(modelsCacheKey); ok {
		return cached.([]*aisdk.ModelInfo), nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.doRequestWithRetry(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	models := make([]*aisdk.ModelInfo, 0, len(body.Data))
	for _, e := range body.Data {
		models = append(models, e.info())
	}
	c.models.Set(modelsCacheKey, models, cache.DefaultExpiration)
	return models, nil
}
