package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const DefaultYouTubeURL = "https://www.googleapis.com/youtube/v3/search"

// YouTubeClient proxies video searches to the YouTube Data API with a
// server-side key.
type YouTubeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewYouTubeClient(apiKey string) *YouTubeClient {
	return &YouTubeClient{
		apiKey:  apiKey,
		baseURL: DefaultYouTubeURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Video is one search hit, flattened for browser clients
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Channel     string `json:"channel"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
}

// VideoResponse is the shape returned to browser clients
type VideoResponse struct {
	Videos []Video `json:"videos"`
}

// Search runs one video search and flattens the API's nested items
func (c *YouTubeClient) Search(ctx context.Context, query string) (*VideoResponse, error) {
	if query == "" {
		return nil, &ValidationError{Msg: "Query is required"}
	}
	if c.apiKey == "" {
		return nil, &ConfigError{Msg: "YouTube API key not configured"}
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("maxResults", "5")
	params.Set("type", "video")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create video search request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("video search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read video search response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[YOUTUBE] YouTube API returned %d: %s", resp.StatusCode, truncateString(string(respBody), 200))
		return nil, &searchUpstreamError{
			service: "YouTube",
			status:  resp.StatusCode,
			details: string(respBody),
		}
	}

	var parsed youtubeSearchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse video search response: %w", err)
	}

	out := &VideoResponse{Videos: make([]Video, 0, len(parsed.Items))}
	for _, item := range parsed.Items {
		out.Videos = append(out.Videos, Video{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Channel:     item.Snippet.ChannelTitle,
			Thumbnail:   item.Snippet.Thumbnails.Medium.URL,
			URL:         "https://youtube.com/watch?v=" + item.ID.VideoID,
		})
	}
	return out, nil
}
