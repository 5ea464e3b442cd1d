// Package llm provides chat completion clients for answering assembled
// prompts.
package llm

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

// Client generates a completion for an assembled prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// --- Gemini Provider ---

// GeminiClient calls Google's generateContent REST API.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type geminiGenRequest struct {
	Contents []geminiGenContent `json:"contents"`
}

type geminiGenContent struct {
	Parts []geminiGenPart `json:"parts"`
}

type geminiGenPart struct {
	Text string `json:"text"`
}

type geminiGenResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient creates a Gemini chat client.
// Default model: gemini-2.0-flash.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(geminiGenRequest{
		Contents: []geminiGenContent{{Parts: []geminiGenPart{{Text: prompt}}}},
	})
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini error %d: %s", resp.StatusCode, string(b))
	}

	var result geminiGenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

// --- OpenAI-compatible Provider ---

// OpenAIClient calls any OpenAI-compatible chat completions API.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type openaiChatRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a chat client for an OpenAI-compatible API.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(openaiChatRequest{
		Model:    c.model,
		Messages: []openaiMessage{{Role: "user", Content: prompt}},
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai error %d: %s", resp.StatusCode, string(b))
	}

	var result openaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return result.Choices[0].Message.Content, nil
}

// --- Factory ---

// NewFromEnv creates a chat client from environment variables.
// AGENT_CONTEXT_LLM_PROVIDER: "gemini" | "openai" | "" (disabled)
// AGENT_CONTEXT_LLM_MODEL: model name
// AGENT_CONTEXT_LLM_URL: base URL override for openai-compatible APIs
// GEMINI_API_KEY / OPENAI_API_KEY: provider credentials
func NewFromEnv() Client {
	provider := os.Getenv("AGENT_CONTEXT_LLM_PROVIDER")
	model := os.Getenv("AGENT_CONTEXT_LLM_MODEL")

	switch provider {
	case "gemini":
		return NewGeminiClient(os.Getenv("GEMINI_API_KEY"), model)
	case "openai":
		url := os.Getenv("AGENT_CONTEXT_LLM_URL")
		key := os.Getenv("OPENAI_API_KEY")
		return NewOpenAIClient(url, key, model)
	default:
		return nil // generation disabled
	}
}
