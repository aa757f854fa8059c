package main

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// generateSignature creates a hash signature for content
// Used for deduplication and tracking in telemetry
func generateSignature(content string) string {
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)[:16] // First 16 chars of hash
}

var (
	tokenEncoder     *tiktoken.Tiktoken
	tokenEncoderOnce sync.Once
)

// countTokens estimates the token count of text. The Yuuki models don't ship
// a tokenizer, so cl100k_base is used as a stand-in; if the encoding can't
// be loaded, fall back to the rough chars/4 heuristic.
func countTokens(text string) int {
	tokenEncoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tokenEncoder = enc
		}
	})
	if tokenEncoder == nil {
		return len(text) / 4
	}
	return len(tokenEncoder.Encode(text, nil, nil))
}

// truncateString truncates a string to maxLen runes with an ellipsis marker
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
