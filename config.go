package main

import (
	"os"
)

// Port configuration. HIGH_PORT_MODE moves the listener off the privileged
// port for local development; PORT overrides both.
const (
	defaultPort  = "80"
	highPortMode = "8080"
)

// httpPort returns the port the HTTP server should bind
func httpPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	if os.Getenv("HIGH_PORT_MODE") == "true" {
		return highPortMode
	}
	return defaultPort
}

// demoToken returns the server-side credential used when a client opts into
// demo mode without supplying its own token.
func demoToken() string {
	return os.Getenv("HF_DEMO_TOKEN")
}

// tavilyAPIKey returns the web-search credential
func tavilyAPIKey() string {
	return os.Getenv("TAVILY_API_KEY")
}

// youtubeAPIKey returns the video-search credential
func youtubeAPIKey() string {
	return os.Getenv("YOUTUBE_API_KEY")
}

// configDir returns the directory holding models.yaml and deployments.yaml.
// Empty means built-in defaults.
func configDir() string {
	return os.Getenv("YUUKI_CONFIG_DIR")
}

// dbPath returns the conversation database location
func dbPath() string {
	if path := os.Getenv("YUUKI_DB"); path != "" {
		return path
	}
	return "yuuki_chat.db"
}
