package main

import (
	"encoding/json"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// beacon emits a structured telemetry event to the log. Events are
// best-effort and never block request handling.
func beacon(event string, fields map[string]interface{}) {
	payload, err := json.Marshal(fields)
	if err != nil {
		log.Printf("[BEACON] %s (unserializable fields: %v)", event, err)
		return
	}
	log.Printf("[BEACON] %s %s", event, payload)
}

// generateRequestID returns a unique ID for request correlation
func generateRequestID() string {
	return uuid.NewString()
}

// Rate limiting: one token bucket per remote address.
const (
	rateLimitPerSecond = 5
	rateLimitBurst     = 10
)

var (
	rateLimitMu      sync.Mutex
	rateLimiters     = make(map[string]*rate.Limiter)
	rateLimiterSeen  = make(map[string]time.Time)
	rateLimiterSweep = time.Now()
)

// rateLimitAllow reports whether a request from remoteAddr may proceed.
// Idle buckets are swept periodically so the map does not grow unbounded.
func rateLimitAllow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	rateLimitMu.Lock()
	defer rateLimitMu.Unlock()

	if time.Since(rateLimiterSweep) > 10*time.Minute {
		for addr, seen := range rateLimiterSeen {
			if time.Since(seen) > 10*time.Minute {
				delete(rateLimiters, addr)
				delete(rateLimiterSeen, addr)
			}
		}
		rateLimiterSweep = time.Now()
	}

	limiter, ok := rateLimiters[host]
	if !ok {
		limiter = rate.NewLimiter(rateLimitPerSecond, rateLimitBurst)
		rateLimiters[host] = limiter
	}
	rateLimiterSeen[host] = time.Now()

	return limiter.Allow()
}
