// Package llama is a client for the llama.cpp server completion API.
package llama

// CompletionRequest is the body of a llama-server POST /completion call.
type CompletionRequest struct {
	Prompt      string   `json:"prompt"`      // Fully rendered chat template
	NPredict    int      `json:"n_predict"`   // Max tokens to generate
	Temperature float64  `json:"temperature"` // Sampling temperature
	TopP        float64  `json:"top_p"`       // Nucleus sampling threshold
	Stop        []string `json:"stop"`        // Stop generation at these sequences
	Stream      bool     `json:"stream"`      // Always false, streaming is not supported
}
