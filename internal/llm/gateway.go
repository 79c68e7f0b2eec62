package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tiktoken-go/tokenizer"
	"go.uber.org/zap"
)

// Source identifies which path produced a completion
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// systemPrompt is the fixed instruction sent with every remote request.
// The persona and the sampling parameters below are constants agreed with
// the provider; they are not tunable per request.
const systemPrompt = `You are LaRun, an exoplanet analysis assistant. You help users ` +
	`search TESS and Kepler light curves for transits, estimate habitable zones, ` +
	`and interpret BLS periodogram results. Answer concisely, show numeric results ` +
	`in aligned tables, and state your assumptions. If asked about a specific ` +
	`target, refer to it by its catalog identifier.`

const (
	defaultTemperature = 0.4
	messageOverhead    = 4 // approximate per-message framing tokens
)

// Result is a completion outcome. Callers always get text to display;
// Source and Reason let them (and tests) tell a remote success from a
// recovered failure.
type Result struct {
	Text   string
	Source Source
	Reason string
}

// Completer defines the interface for producing a reply to a user message
type Completer interface {
	Complete(ctx context.Context, message string, history []Message) Result
}

// Message represents a chat message on the wire
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request to the completion provider
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse represents the provider's response
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response
type Choice struct {
	Index        int      `json:"index"`
	Message      *Message `json:"message,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// Options configures a Gateway
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	TokenBudget int
	Timeout     time.Duration
}

// Gateway sends completions to an OpenAI-compatible provider and falls
// back to the local generator on any failure. Complete never errors: the
// caller always receives something to show.
type Gateway struct {
	opts       Options
	httpClient *http.Client
	fallback   func(message string) string
	codec      tokenizer.Codec
	logger     *zap.Logger
}

// ------------------------------------------------------------------------------------------------------
// NewGateway creates a completion gateway. fallback is the local
// generator used when the remote provider is unreachable or unconfigured.
func NewGateway(opts Options, fallback func(string) string, logger *zap.Logger) *Gateway {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		logger.Warn("Tokenizer unavailable, context trimming disabled", zap.Error(err))
		codec = nil
	}

	return &Gateway{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		fallback: fallback,
		codec:    codec,
		logger:   logger,
	}
}

// ------------------------------------------------------------------------------------------------------
func (g *Gateway) Complete(ctx context.Context, message string, history []Message) Result {
	if g.opts.APIKey == "" {
		return g.recover(message, "no completion API key configured")
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	messages = append(messages, g.trimToBudget(history)...)
	messages = append(messages, Message{Role: "user", Content: message})

	reqBody := ChatRequest{
		Model:       g.opts.Model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   g.opts.MaxTokens,
	}

	resp, err := g.doRequest(ctx, reqBody)
	if err != nil {
		return g.recover(message, err.Error())
	}
	defer resp.Body.Close()

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return g.recover(message, "malformed provider response: "+err.Error())
	}

	if len(chatResp.Choices) > 0 && chatResp.Choices[0].Message != nil &&
		chatResp.Choices[0].Message.Content != "" {
		return Result{
			Text:   chatResp.Choices[0].Message.Content,
			Source: SourceRemote,
		}
	}

	return g.recover(message, "no completion content in provider response")
}

// ------------------------------------------------------------------------------------------------------
func (g *Gateway) recover(message, reason string) Result {
	g.logger.Warn("Remote completion unavailable, using local generator",
		zap.String("reason", reason),
	)
	return Result{
		Text:   g.fallback(message),
		Source: SourceFallback,
		Reason: reason,
	}
}
