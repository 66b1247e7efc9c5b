// Package llmclient provides typed request/response wrappers (C2) around
// an OpenAI-compatible chat completion endpoint for the five prompts the
// engine depends on: extract, abstract, discover connections, synthesize
// implication, and score.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/prompts"
	"github.com/icyhot/recall/internal/types"
)

// Client is the typed LLM client. It never retries; callers decide
// (spec.md §4.2).
type Client struct {
	api            *openai.Client
	model          string
	defaultTimeout time.Duration
}

// New constructs a Client from configuration.
func New(cfg *config.LLMConfig) *Client {
	oaiCfg := openai.DefaultConfig(cfg.APIKey)
	oaiCfg.BaseURL = cfg.BaseURL
	return &Client{
		api:            openai.NewClientWithConfig(oaiCfg),
		model:          cfg.Model,
		defaultTimeout: cfg.DefaultTimeout,
	}
}

// ExtractedMemory is one item of the extraction prompt's output.
type ExtractedMemory struct {
	Content      string   `json:"content"`
	ContactNames []string `json:"contact_names"`
	Significance string   `json:"significance"`
}

// Extract runs the atomic-extraction prompt over a journal entry.
func (c *Client) Extract(ctx context.Context, journalText, sourceDate string, contacts []string, timeout time.Duration) ([]ExtractedMemory, error) {
	var out struct {
		Memories []ExtractedMemory `json:"memories"`
	}
	prompt := prompts.Extract(journalText, sourceDate, contacts)
	if err := c.call(ctx, prompt, timeout, &out); err != nil {
		return nil, err
	}
	for _, m := range out.Memories {
		switch m.Significance {
		case "high", "medium", "low":
		default:
			return nil, &types.ErrLLMOutputInvalid{Mode: types.FailureShapeMismatch, Cause: errors.New("invalid significance: " + m.Significance)}
		}
	}
	return out.Memories, nil
}

// Abstract runs the abstraction prompt over a single memory's content. The
// response is plain text, not JSON, so it bypasses the JSON extraction path.
func (c *Client) Abstract(ctx context.Context, content string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	text, err := c.complete(ctx, prompts.Abstract(content), timeout)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(strings.Trim(text, "\""))
	if text == "" {
		return "", &types.ErrLLMOutputInvalid{Mode: types.FailureShapeMismatch, Cause: errors.New("empty abstract")}
	}
	return text, nil
}

// DiscoveredConnection is one item of the discover-connections prompt's
// output.
type DiscoveredConnection struct {
	MemoryAID      string `json:"memory_a_id"`
	MemoryBID      string `json:"memory_b_id"`
	ConnectionType string `json:"connection_type"`
	Reason         string `json:"reason"`
}

// DiscoverConnections runs the connection-discovery prompt over a cluster.
func (c *Client) DiscoverConnections(ctx context.Context, members []prompts.ClusterMember, contacts []string, isAntiCluster bool, timeout time.Duration) ([]DiscoveredConnection, error) {
	var out struct {
		Connections []DiscoveredConnection `json:"connections"`
	}
	prompt := prompts.DiscoverConnections(members, contacts, isAntiCluster)
	if err := c.call(ctx, prompt, timeout, &out); err != nil {
		return nil, err
	}
	for _, conn := range out.Connections {
		if !types.ValidConnectionTypes[types.ConnectionType(conn.ConnectionType)] {
			return nil, &types.ErrLLMOutputInvalid{Mode: types.FailureShapeMismatch, Cause: errors.New("invalid connection_type: " + conn.ConnectionType)}
		}
	}
	return out.Connections, nil
}

// SynthesizedImplication is one item of the synthesize-implication
// prompt's output.
type SynthesizedImplication struct {
	Content         string   `json:"content"`
	ImplicationType string   `json:"implication_type"`
	SourceMemoryIDs []string `json:"source_memory_ids"`
	Order           int      `json:"order"`
}

// SynthesizeImplication runs the implication-synthesis prompt over a
// cluster and its discovered connections.
func (c *Client) SynthesizeImplication(ctx context.Context, members []prompts.ClusterMember, connections []prompts.Connection, contacts []string, isAntiCluster bool, timeout time.Duration) ([]SynthesizedImplication, error) {
	var out struct {
		Implications []SynthesizedImplication `json:"implications"`
	}
	prompt := prompts.SynthesizeImplication(members, connections, contacts, isAntiCluster)
	if err := c.call(ctx, prompt, timeout, &out); err != nil {
		return nil, err
	}
	for _, im := range out.Implications {
		if !types.ValidImplicationTypes[types.ImplicationType(im.ImplicationType)] {
			return nil, &types.ErrLLMOutputInvalid{Mode: types.FailureShapeMismatch, Cause: errors.New("invalid implication_type: " + im.ImplicationType)}
		}
	}
	return out.Implications, nil
}

// Score runs the quality-gate prompt. A non-numeric response is returned
// as (0, nil): the quality gate's fail-open policy is the caller's
// decision, not this client's (spec.md §4.8, §9 Open Question #3).
func (c *Client) Score(ctx context.Context, implicationContent string, sourceContents []string, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	text, err := c.complete(ctx, prompts.Score(implicationContent, sourceContents), timeout)
	if err != nil {
		return 0, err
	}
	digit := firstDigit(text)
	if digit == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(digit)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func firstDigit(s string) string {
	for _, r := range s {
		if r >= '1' && r <= '5' {
			return string(r)
		}
	}
	return ""
}

// call issues prompt, extracts the first brace-balanced JSON object from
// the response, and unmarshals it into out.
func (c *Client) call(ctx context.Context, prompt string, timeout time.Duration, out any) error {
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	text, err := c.complete(ctx, prompt, timeout)
	if err != nil {
		return err
	}
	obj := extractJSONObject(text)
	if obj == "" {
		return &types.ErrLLMOutputInvalid{Mode: types.FailureNoJSON, Cause: errors.New("no brace-balanced object found in response")}
	}
	if err := json.Unmarshal([]byte(obj), out); err != nil {
		return &types.ErrLLMOutputInvalid{Mode: types.FailureParseError, Cause: err}
	}
	return nil
}

// complete invokes the provider with a per-call timeout and returns the
// raw response text.
func (c *Client) complete(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", &types.ErrLLMOutputInvalid{Mode: types.FailureTimeout, Cause: err}
		}
		return "", &types.ErrLLMOutputInvalid{Mode: types.FailureProviderError, Cause: pkgerrors.Wrap(err, "llm provider call failed")}
	}
	if len(resp.Choices) == 0 {
		return "", &types.ErrLLMOutputInvalid{Mode: types.FailureProviderError, Cause: errors.New("empty choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}

// extractJSONObject returns the first brace-balanced JSON object
// substring found in text, or "" if none is found.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
