package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/devboards/newswire/internal/article"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	systemPrompt = "You are a tech news editor and analyst."

	// Content is truncated to this prefix before transmission to respect
	// request-size limits.
	maxContentChars = 3000

	maxTags = 5

	requestTimeout = 120 * time.Second
)

const promptTemplate = `Analyze the following IT news article and extract/generate the required information in JSON format.

Title: %s
Content Snippet: %s

Output Fields:
- is_relevant: true if this is relevant tech news, false otherwise.
- summary: A concise summary of the article (max 2-3 sentences) in the same language of the article.
- category: The primary category (e.g., "AI", "DevOps", "Cybersecurity", "Development", "Cloud", "Hardware", "Mobile", "Data Science", "Blockchain", "General").
- tags: A list of relevant technical tags (max 5).
- language: The language of the article ("en", "it", etc.).
- sentiment: "positive", "neutral", or "negative".
- translations: An array with exactly one entry per language code: en, it, es, de, fr. Each entry has "language", "title", "summary" and "content", all fully rendered in that language. The "content" field must be the complete translated article text, not a stub. The "en" entry must carry the full English rendering even when the article is already in English.

Return ONLY valid JSON.`

// Result is the structured enrichment a model must return for one article.
// It is complete or it does not exist; the client never yields a partially
// populated Result.
type Result struct {
	IsRelevant   bool                  `json:"is_relevant"`
	Summary      string                `json:"summary"`
	Category     string                `json:"category"`
	Tags         []string              `json:"tags"`
	Language     string                `json:"language"`
	Sentiment    string                `json:"sentiment"`
	Translations []article.Translation `json:"translations"`
}

// Client calls an OpenAI-compatible chat-completions endpoint for article
// enrichment. A client without a credential is still constructed; it
// operates in an always-fails mode.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewClient builds a Client. Empty baseURL and model get the OpenAI
// defaults; an empty apiKey disables the client rather than erroring.
func NewClient(baseURL, model, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	if apiKey == "" {
		log.Println("No API key configured; enrichment will fail and the fallback will be used")
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// IsConfigured reports whether the client holds a credential.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Enrich asks the model to summarize, categorize, tag, and translate one
// article. Transport failures, credential absence, and response-shape
// failures all surface as a uniform error.
func (c *Client) Enrich(ctx context.Context, title, content string) (*Result, error) {
	if c.apiKey == "" {
		return nil, errors.New("enrichment client not configured")
	}

	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	prompt := fmt.Sprintf(promptTemplate, title, content)

	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("model API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, errors.New("no choices in model response")
	}

	return parseResult(apiResp.Choices[0].Message.Content)
}
