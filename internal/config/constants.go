package config

import (
	"strings"
	"time"
)

// Application constants for the TradePulse ingestion service
const (
	// Application Info
	AppName    = "TradePulse"
	AppVersion = "1.2.0"

	// Upload handling
	AllowedExtensionXLSX = ".xlsx"
	AllowedExtensionCSV  = ".csv"

	// Header scanning
	HeaderScanLimit = 20

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second

	// Operation Timeouts
	DefaultRunTimeout = 30 * time.Minute

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	MaxLogFileSize   = 100 * 1024 * 1024 // 100MB

	// API Endpoints (internal)
	APIBasePath     = "/api/v1"
	FilesEndpoint   = "/api/v1/files"
	RunsEndpoint    = "/api/v1/runs"
	HealthEndpoint  = "/api/v1/health"
	MetricsEndpoint = "/metrics"
)

// AllowedExtensions lists the upload extensions the pipelines accept.
var AllowedExtensions = []string{AllowedExtensionXLSX, AllowedExtensionCSV}

// ExtensionAllowed reports whether ext (including the dot, any case)
// is an accepted upload extension.
func ExtensionAllowed(ext string) bool {
	for _, allowed := range AllowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
