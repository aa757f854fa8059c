package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const DefaultTavilyURL = "https://api.tavily.com/search"

// ResearchClient proxies web-search queries to Tavily. The API key stays
// server-side; clients never see it.
type ResearchClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewResearchClient creates a research client. An empty apiKey is allowed at
// construction; requests fail with a config error until one is set.
func NewResearchClient(apiKey string) *ResearchClient {
	return &ResearchClient{
		apiKey:  apiKey,
		baseURL: DefaultTavilyURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	MaxResults        int    `json:"max_results"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// ResearchResult is one annotated search hit
type ResearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// ResearchResponse is the shape returned to browser clients
type ResearchResponse struct {
	Answer  string           `json:"answer"`
	Results []ResearchResult `json:"results"`
}

// Search runs one web search. Upstream failures carry the upstream status
// through so the handler can pass it along.
func (c *ResearchClient) Search(ctx context.Context, query string) (*ResearchResponse, error) {
	if query == "" {
		return nil, &ValidationError{Msg: "Query is required"}
	}
	if c.apiKey == "" {
		return nil, &ConfigError{Msg: "Tavily API key not configured"}
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:            c.apiKey,
		Query:             query,
		SearchDepth:       "advanced",
		IncludeAnswer:     true,
		IncludeRawContent: false,
		MaxResults:        5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[RESEARCH] Tavily returned %d: %s", resp.StatusCode, truncateString(string(respBody), 200))
		return nil, &searchUpstreamError{
			service: "Tavily",
			status:  resp.StatusCode,
			details: string(respBody),
		}
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	out := &ResearchResponse{
		Answer:  parsed.Answer,
		Results: make([]ResearchResult, 0, len(parsed.Results)),
	}
	for _, r := range parsed.Results {
		out.Results = append(out.Results, ResearchResult(r))
	}
	return out, nil
}

// searchUpstreamError preserves the upstream status so proxy handlers can
// pass it through instead of collapsing everything to 500.
type searchUpstreamError struct {
	service string
	status  int
	details string
}

func (e *searchUpstreamError) Error() string {
	return fmt.Sprintf("%s error: %d", e.service, e.status)
}
