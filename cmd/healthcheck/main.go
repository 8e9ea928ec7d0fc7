// Package main is a minimal health probe for container images without
// wget or curl.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultPort = "6002"

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/health", port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
		os.Exit(1)
	}
	// os.Exit skips deferred calls, close inline
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "health check status: %d\n", resp.StatusCode)
		os.Exit(1)
	}
}
