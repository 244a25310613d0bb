package gateway

import (
	"context"
	"net/http"
)

type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// Chat asks the AI nutrition assistant a question. Access is role-gated
// server side; a plain user gets a 403 back as an APIError.
func (c *Client) Chat(ctx context.Context, token, message string) (string, error) {
	var out ChatResponse
	if err := c.do(ctx, http.MethodPost, "/ai/chat", token, ChatRequest{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}
