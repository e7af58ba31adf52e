package relay

import "time"

// Config is the relay server configuration.
type Config struct {
	// Address to listen on (e.g., ":8000")
	ListenAddr string

	// Upstream llama-server base URL (e.g., "http://localhost:8080")
	UpstreamURL string

	// CompletionPath is appended to UpstreamURL (e.g., "/completion")
	CompletionPath string

	// Timeout bounds each upstream call. Zero means llama.DefaultTimeout.
	Timeout time.Duration

	// Defaults fill in sampling parameters a chat request leaves out.
	Defaults Sampling

	// StaticDir holds the front-end files and the assets/ directory.
	StaticDir string

	// CORSOrigins is passed to the CORS middleware, "*" allows any origin.
	CORSOrigins string

	// AgentName and ModelName are reported by /api/health.
	AgentName string
	ModelName string

	// DebugEndpoints mounts /debug/paths.
	DebugEndpoints bool
}

// Sampling holds the generation knobs forwarded to llama-server.
type Sampling struct {
	NPredict    int
	Temperature float64
	TopP        float64
}
