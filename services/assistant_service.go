package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// AssistantService calls the AI inference service for chat completions and
// nutrient estimates. The service is slow on cold starts, hence the generous
// timeout.
type AssistantService struct {
	baseURL string
	client  *http.Client
}

func NewAssistantService() *AssistantService {
	return &AssistantService{
		baseURL: os.Getenv("AI_SERVICE_URL"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type FoodNutrients struct {
	Calories       float64            `json:"calories"`
	Protein        float64            `json:"protein"`
	Carbohydrates  float64            `json:"carbohydrates"`
	Fat            float64            `json:"fat"`
	Micronutrients map[string]float64 `json:"micronutrients"`
}

func (s *AssistantService) post(ctx context.Context, path string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal AI request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build AI request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("AI service call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read AI response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("AI service error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse AI response: %w", err)
	}
	return nil
}

func (s *AssistantService) Chat(ctx context.Context, message, chatContext string) (string, error) {
	body := map[string]string{"message": message}
	if chatContext != "" {
		body["context"] = chatContext
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := s.post(ctx, "/chat", body, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// GenerateNutrients estimates the nutrient breakdown for one food. Callers
// treat a failure as "no estimate" and fall back to zeros.
func (s *AssistantService) GenerateNutrients(ctx context.Context, name string, quantity float64, unit string) (*FoodNutrients, error) {
	body := map[string]any{"food_name": name, "quantity": quantity, "unit": unit}
	var out FoodNutrients
	if err := s.post(ctx, "/generate-nutrients", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
