package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/etherea-os/etherea/pkg/llama"
)

// handleChat relays one message. Readiness is checked before the body is
// parsed, so a relay without a system prompt answers 500 to any body.
func (r *Relay) handleChat(c *fiber.Ctx) error {
	if !r.system.Loaded() {
		return r.chatError(c, ErrNotReady)
	}

	var body chatRequestBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		r.logger.Warn("failed to parse chat request", zap.Error(err), zap.String("request_id", requestID(c)))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Detail: "invalid request body"})
	}
	if body.Message == nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Detail: "field required: message"})
	}

	r.logger.Debug("received chat request",
		zap.String("request_id", requestID(c)),
		zap.Int("message_len", len(*body.Message)),
	)

	var nPredict *int
	if body.NPredict != nil {
		n, err := wholeNumber(*body.NPredict)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Detail: "n_predict: " + err.Error()})
		}
		nPredict = &n
	}

	// UserContext is not cancelled by server shutdown, so in-flight chats
	// finish while the server drains.
	resp, err := r.Chat(c.UserContext(), ChatRequest{
		Message:  *body.Message,
		NPredict: nPredict,
		Temp:     body.Temp,
		TopP:     body.TopP,
	})
	if err != nil {
		return r.chatError(c, err)
	}

	return c.JSON(resp)
}

// wholeNumber accepts integers and integral floats such as 5.0.
func wholeNumber(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a whole number: %s", n)
	}
	return int(f), nil
}

func (r *Relay) chatError(c *fiber.Ctx, err error) error {
	status, detail := r.errorStatus(err)
	r.logger.Error("chat request failed",
		zap.String("request_id", requestID(c)),
		zap.Int("status", status),
		zap.Error(err),
	)
	return c.Status(status).JSON(ErrorResponse{Detail: detail})
}

// errorStatus maps a Chat error to its HTTP status and client-facing detail.
func (r *Relay) errorStatus(err error) (int, string) {
	if errors.Is(err, ErrNotReady) {
		return fiber.StatusInternalServerError, r.config.AgentName + "'s mind is not loaded yet."
	}

	switch llama.KindOf(err) {
	case llama.KindUnavailable:
		return fiber.StatusServiceUnavailable, "Cannot connect to LLM server. Is llama-server running?"
	case llama.KindTimeout:
		return fiber.StatusGatewayTimeout, "LLM server timed out"
	default:
		return fiber.StatusInternalServerError, "LLM error: " + err.Error()
	}
}

// handleHealth reports fixed identity fields; it never contacts upstream.
func (r *Relay) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "online",
		Agent:  r.config.AgentName,
		Model:  r.config.ModelName,
	})
}

// errorHandler renders errors that escape handlers, such as unmatched routes,
// in the relay's {"detail": ...} shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ErrorResponse{Detail: err.Error()})
}
