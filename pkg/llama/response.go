package llama

// CompletionResponse is the subset of a llama-server completion reply the
// relay reads. Only Content feeds the reply; the rest is logged.
type CompletionResponse struct {
	Content         string   `json:"content"`                    // Generated text, empty if absent
	Model           string   `json:"model,omitempty"`            // Model alias or path
	Stop            bool     `json:"stop,omitempty"`             // Generation stopped
	StoppingWord    string   `json:"stopping_word,omitempty"`    // Stop sequence that ended generation
	TokensPredicted int      `json:"tokens_predicted,omitempty"` // Generated tokens
	TokensEvaluated int      `json:"tokens_evaluated,omitempty"` // Tokens in prompt
	Truncated       bool     `json:"truncated,omitempty"`        // Prompt exceeded context
	Timings         *Timings `json:"timings,omitempty"`
}

// Timings reports server-side generation timings in milliseconds.
type Timings struct {
	PromptMS    float64 `json:"prompt_ms"`
	PredictedMS float64 `json:"predicted_ms"`
}
