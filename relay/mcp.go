package relay

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// ChatToolInput is the argument schema of the MCP chat tool.
type ChatToolInput struct {
	Message  string   `json:"message" jsonschema:"the message to send to the agent"`
	NPredict *int     `json:"n_predict,omitempty" jsonschema:"maximum number of tokens to generate"`
	Temp     *float64 `json:"temp,omitempty" jsonschema:"sampling temperature"`
	TopP     *float64 `json:"top_p,omitempty" jsonschema:"nucleus sampling threshold"`
}

// ChatToolOutput is the structured result of the MCP chat tool. Exactly one
// of Text and Command is set, matching Role.
type ChatToolOutput struct {
	Role    string `json:"role"`
	Text    string `json:"text,omitempty"`
	Command string `json:"command,omitempty"`
}

// NewMCPServer exposes Chat as the "chat" tool of an MCP server.
func (r *Relay) NewMCPServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "etherea",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat",
		Description: "Send one message to " + r.config.AgentName + " and return the reply or the tool command it requests.",
	}, r.chatTool)

	return server
}

func (r *Relay) chatTool(ctx context.Context, _ *mcp.CallToolRequest, in ChatToolInput) (*mcp.CallToolResult, ChatToolOutput, error) {
	resp, err := r.Chat(ctx, ChatRequest{
		Message:  in.Message,
		NPredict: in.NPredict,
		Temp:     in.Temp,
		TopP:     in.TopP,
	})
	if err != nil {
		_, detail := r.errorStatus(err)
		r.logger.Error("mcp chat failed", zap.Error(err))
		return nil, ChatToolOutput{}, errors.New(detail)
	}

	out := ChatToolOutput{Role: resp.Role}
	if resp.Text != nil {
		out.Text = *resp.Text
	}
	if resp.Command != nil {
		out.Command = *resp.Command
	}
	return nil, out, nil
}
