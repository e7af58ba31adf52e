// Package prompt loads the agent's system prompt and renders it, together with
// a user message, into the Llama 3 chat template expected by llama-server.
package prompt

import (
	"fmt"
	"os"
	"strings"
)

// Llama 3 chat template markers.
const (
	BeginOfText     = "<|begin_of_text|>"
	StartHeader     = "<|start_header_id|>"
	EndHeader       = "<|end_header_id|>"
	EndOfTurn       = "<|eot_id|>"
	RoleSystem      = "system"
	RoleUser        = "user"
	RoleAssistant   = "assistant"
	StopSequence    = EndOfTurn
	ToolCommandMark = "TOOL_COMMAND:"
)

// SystemPrompt is the persona text prepended to every user message.
// The zero value is an unloaded prompt.
type SystemPrompt string

// Loaded reports whether the prompt holds any text.
func (s SystemPrompt) Loaded() bool {
	return s != ""
}

// Load reads the system prompt file at path and trims surrounding whitespace.
// A missing file yields an error wrapping fs.ErrNotExist.
func Load(path string) (SystemPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("system prompt file %s: %w", path, err)
	}

	return SystemPrompt(strings.TrimSpace(string(data))), nil
}

// Build renders system and the trimmed message into a single-turn prompt that
// ends on an open assistant header.
func Build(system SystemPrompt, message string) string {
	var b strings.Builder
	b.WriteString(BeginOfText)
	writeHeader(&b, RoleSystem)
	b.WriteString(string(system))
	b.WriteString(EndOfTurn)
	writeHeader(&b, RoleUser)
	b.WriteString(strings.TrimSpace(message))
	b.WriteString(EndOfTurn)
	writeHeader(&b, RoleAssistant)
	return b.String()
}

func writeHeader(b *strings.Builder, role string) {
	b.WriteString(StartHeader)
	b.WriteString(role)
	b.WriteString(EndHeader)
	b.WriteString("\n")
}
