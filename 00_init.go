package main

import (
	"log"

	"github.com/joho/godotenv"
)

// Loads .env before any other init runs. The 00_ prefix keeps this file first
// in lexical order so environment-dependent initializers see the loaded vars.
func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INIT] No .env file found, using environment variables")
	} else {
		log.Printf("[INIT] Loaded environment from .env")
	}
}
