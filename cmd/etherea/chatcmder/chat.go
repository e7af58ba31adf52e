package chatcmder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/etherea-os/etherea/relay"
)

const chatLongDesc string = `Send one message to a running Etherea relay.

POSTs the message to the relay's /api/chat endpoint and prints
the reply. On a terminal, chat replies are rendered as markdown
and tool commands are highlighted; otherwise the text is printed
as-is. Sampling flags are only sent when set.

Examples:
  etherea chat "What's on my schedule?"
  etherea chat --server http://192.168.1.42:8000 --temp 0.2 "hello"
  etherea chat --raw "open settings"`

const chatShortDesc string = "Send a message to a running relay"

// requestTimeout leaves headroom over the relay's own upstream timeout.
const requestTimeout = 90 * time.Second

var (
	toolLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

type chatCommander struct {
	serverURL string
	nPredict  int
	temp      float64
	topP      float64
	raw       bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:8000", "Relay base URL")
	cmd.Flags().IntVarP(&cmder.nPredict, "n-predict", "n", 0, "Max tokens to generate")
	cmd.Flags().Float64Var(&cmder.temp, "temp", 0, "Sampling temperature")
	cmd.Flags().Float64Var(&cmder.topP, "top-p", 0, "Nucleus sampling threshold")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the relay's JSON reply")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command, message string) error {
	body := map[string]any{"message": message}
	if cmd.Flags().Changed("n-predict") {
		body["n_predict"] = c.nPredict
	}
	if cmd.Flags().Changed("temp") {
		body["temp"] = c.temp
	}
	if cmd.Flags().Changed("top-p") {
		body["top_p"] = c.topP
	}

	raw, err := c.post(body)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.raw {
		_, err := fmt.Fprintln(out, string(bytes.TrimSpace(raw)))
		return err
	}

	var resp relay.ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("could not decode reply: %w", err)
	}

	return render(out, resp)
}

func (c *chatCommander) post(body map[string]any) ([]byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("could not marshal message: %w", err)
	}

	client := &http.Client{Timeout: requestTimeout}
	url := strings.TrimRight(c.serverURL, "/") + "/api/chat"

	resp, err := client.Post(url, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read reply: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp relay.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Detail != "" {
			return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, errResp.Detail)
		}
		return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return respBody, nil
}

func render(w io.Writer, resp relay.ChatResponse) error {
	tty, width := terminal(w)

	if resp.Role == relay.RoleTool {
		command := deref(resp.Command)
		if tty {
			_, err := fmt.Fprintln(w, toolLabelStyle.Render("tool")+" "+toolStyle.Render(command))
			return err
		}
		_, err := fmt.Fprintln(w, command)
		return err
	}

	text := deref(resp.Text)
	if tty {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			if rendered, err := renderer.Render(text); err == nil {
				_, err := fmt.Fprint(w, rendered)
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w, text)
	return err
}

// terminal reports whether w is a terminal and, if so, its wrap width.
func terminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, 0
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 8 {
		return true, 80
	}
	return true, width - 4
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
