package relay

import "encoding/json"

// ChatRequest is a single user message with optional sampling overrides.
// Nil overrides take the configured defaults.
type ChatRequest struct {
	Message  string
	NPredict *int
	Temp     *float64
	TopP     *float64
}

// chatRequestBody is the wire form of POST /api/chat.
type chatRequestBody struct {
	Message  *string      `json:"message"`             // Required
	NPredict *json.Number `json:"n_predict,omitempty"` // Max tokens to generate, 5.0 is accepted
	Temp     *float64     `json:"temp,omitempty"`      // Forwarded upstream as "temperature"
	TopP     *float64     `json:"top_p,omitempty"`     // Nucleus sampling threshold
}

// Reply roles.
const (
	RoleChat = "chat"
	RoleTool = "tool"
)

// ChatResponse carries either conversational text or a tool command; the
// other field is null.
type ChatResponse struct {
	Role    string  `json:"role"`
	Text    *string `json:"text"`
	Command *string `json:"command"`
}

// ErrorResponse is the body of every non-2xx relay reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Agent  string `json:"agent"`
	Model  string `json:"model"`
}
