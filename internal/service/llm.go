package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// LLMErrorKind classifies a failed language-model call so the caller can
// decide how to render it.
type LLMErrorKind int

const (
	LLMErrUnavailable LLMErrorKind = iota
	LLMErrInvalidCredential
	LLMErrRateLimited
)

// LLMError is returned by every failed LLM call, regardless of which
// operation failed.
type LLMError struct {
	Kind   LLMErrorKind
	Status int
	Err    error
}

func (e *LLMError) Error() string {
	switch e.Kind {
	case LLMErrInvalidCredential:
		return "llm: invalid API credential"
	case LLMErrRateLimited:
		return "llm: rate limit exceeded"
	default:
		return fmt.Sprintf("llm: request failed: %v", e.Err)
	}
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// LLMService talks to an OpenAI-compatible chat-completions endpoint. Every
// call is an independent request/response; there is no streaming, tool use or
// multi-turn memory.
type LLMService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewLLMService creates a new LLMService instance from the environment.
func NewLLMService() (*LLMService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("OPENAI_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY or OPENAI_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("OPENAI_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4.1-mini"
	}

	return &LLMService{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat-completions request
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

const systemPrompt = "You are a helpful cooking assistant that only provides recipes and cooking-related advice. Always use metric measurements."

// GenerateRecipe generates a recipe from a list of ingredients.
func (s *LLMService) GenerateRecipe(ctx context.Context, ingredients []string) (string, error) {
	return s.complete(ctx, generatePrompt(ingredients))
}

// VerifyRecipe asks the model to check and improve an existing recipe text.
func (s *LLMService) VerifyRecipe(ctx context.Context, content string) (string, error) {
	return s.complete(ctx, verifyPrompt(content))
}

func generatePrompt(ingredients []string) string {
	return fmt.Sprintf(`You are a professional chef. Create a detailed recipe using ONLY these ingredients: %s.

IMPORTANT RULES:
1. Use ONLY metric measurements (grams, milliliters, liters, etc.)
2. Include prep time and cooking time
3. Provide step-by-step instructions
4. Suggest serving size
5. Keep the recipe practical and achievable for home cooking
6. If the ingredients don't make sense together, suggest the closest viable recipe

Format the recipe clearly with sections for:
- Recipe Name
- Prep Time & Cook Time
- Servings
- Ingredients (with metric measurements)
- Instructions (numbered steps)
- Optional: Tips or variations`, strings.Join(ingredients, ", "))
}

func verifyPrompt(content string) string {
	return fmt.Sprintf(`You are a professional chef. Review the following recipe, fix any mistakes, convert all measurements to metric units, and improve the instructions where they are unclear. Keep the same dish and the same section layout:
- Recipe Name
- Prep Time & Cook Time
- Servings
- Ingredients (with metric measurements)
- Instructions (numbered steps)
- Optional: Tips or variations

Recipe to review:

%s`, content)
}

func (s *LLMService) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := Request{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &LLMError{Kind: LLMErrUnavailable, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &LLMError{Kind: LLMErrUnavailable, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &LLMError{Kind: LLMErrUnavailable, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &LLMError{Kind: LLMErrUnavailable, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		log.Printf("Invalid OpenAI API key")
		return "", &LLMError{Kind: LLMErrInvalidCredential, Status: resp.StatusCode}
	case http.StatusTooManyRequests:
		log.Printf("OpenAI rate limit exceeded")
		return "", &LLMError{Kind: LLMErrRateLimited, Status: resp.StatusCode}
	default:
		log.Printf("API request failed with status %d: %s", resp.StatusCode, string(body))
		return "", &LLMError{
			Kind:   LLMErrUnavailable,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("API request failed with status %d", resp.StatusCode),
		}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &LLMError{Kind: LLMErrUnavailable, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(result.Choices) == 0 {
		return "", &LLMError{Kind: LLMErrUnavailable, Err: fmt.Errorf("no response from API")}
	}

	return result.Choices[0].Message.Content, nil
}
