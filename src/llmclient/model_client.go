package llmclient

import (
	"context"

	"github.com/elee1766/naochat/src/aisdk"
)

var _ aisdk.ModelClient = (*ModelClient)(nil)

// ModelClient represents a client bound to a specific model
type ModelClient struct {
	client *Client
	model  *aisdk.ModelInfo
}

// Model binds the client to modelName. The model listing is consulted for
// metadata when available; an unlisted model is still usable.
func (c *Client) Model(ctx context.Context, modelName string) (aisdk.ModelClient, error) {
	info := &aisdk.ModelInfo{ID: modelName, Name: modelName}
	if models, err := c.ListModels(ctx); err != nil {
		c.logger.Debug("model listing unavailable", "model", modelName, "error", err)
	} else {
		for _, m := range models {
			if m.ID == modelName {
				info = m
				break
			}
		}
	}
	return &ModelClient{client: c, model: info}, nil
}

// CreateChatCompletion creates a chat completion with the bound model
func (mc *ModelClient) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	req.Model = mc.model.ID
	return mc.client.createChatCompletion(ctx, req)
}

// CreateChatCompletionStream creates a streaming chat completion with the bound model
func (mc *ModelClient) CreateChatCompletionStream(ctx context.Context, req *aisdk.ChatCompletionRequest) (aisdk.StreamInterface, error) {
	req.Model = mc.model.ID
	return mc.client.createChatCompletionStream(ctx, req)
}

// GetModelInfo returns the model information
func (mc *ModelClient) GetModelInfo() *aisdk.ModelInfo {
	return mc.model
}
