package utils

import (
	"net/http"
	"strings"
)

// ClientProfile classifies a downstream client for the OpenAI-compatible
// surface.
type ClientProfile int

const (
	// ProfileStandard clients receive incremental content deltas.
	ProfileStandard ClientProfile = iota
	// ProfileBuffered clients parse embedded tool markup and cannot tolerate
	// it split across chunks; they get a single buffered, repaired chunk.
	ProfileBuffered
)

// ClassifyClient fingerprints the request. The KiloCode VSCode extension
// announces itself via a dedicated header or its user-agent.
func ClassifyClient(header http.Header) ClientProfile {
	if header.Get("X-Kilocode-Version") != "" {
		return ProfileBuffered
	}
	ua := strings.ToLower(header.Get("User-Agent"))
	if strings.Contains(ua, "kilo-code") || strings.Contains(ua, "kilocode") {
		return ProfileBuffered
	}
	return ProfileStandard
}
