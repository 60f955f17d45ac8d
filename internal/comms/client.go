// Package comms talks to the agent coordination server that relays
// messages between running agents. All endpoints are small JSON POSTs;
// the server is optional and every caller decides how loudly to fail.
package comms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// APIError describes a non-2xx response from the coordination server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" && e.Code != "" {
		return fmt.Sprintf("comms error %s: %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("comms error: %s", e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("comms error: %s", e.Code)
	}
	return fmt.Sprintf("comms error: status %d", e.Status)
}

type apiErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UnreadMessage is one queued message returned by Unread. Message is kept
// raw because senders post either a bare string or a structured object.
type UnreadMessage struct {
	Sender    string          `json:"sender"`
	Message   json.RawMessage `json:"message"`
	CreatedAt string          `json:"created_at"`
}

// StructuredMessage is the typed form of a relayed message.
type StructuredMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Data    any    `json:"data,omitempty"`
}

// CompletionUpdate marks a registered agent as finished.
type CompletionUpdate struct {
	SessionID          string         `json:"session_id"`
	Name               string         `json:"name"`
	Status             string         `json:"status"`
	CompletedAt        *string        `json:"completed_at"`
	CompletionMetadata map[string]any `json:"completion_metadata"`
	FinalResponse      string         `json:"final_response"`
	ToolCalls          []any          `json:"tool_calls"`
}

type messageRequest struct {
	Sender  string `json:"sender"`
	Message any    `json:"message"`
}

type unreadRequest struct {
	SubagentName string `json:"subagent_name"`
}

type unreadResponse struct {
	Messages []UnreadMessage `json:"messages"`
}

type registerRequest struct {
	SessionID    string `json:"session_id"`
	Name         string `json:"name"`
	SubagentType string `json:"subagent_type"`
}

type initialPromptRequest struct {
	InitialPrompt string `json:"initial_prompt"`
}

// Client is a thin JSON client for the coordination server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given server base URL.
func NewClient(baseURL string) (*Client, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: normalized,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// NormalizeBaseURL validates and canonicalizes a server base URL.
func NormalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("comms server URL is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid comms server URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("comms server URL must include scheme and host")
	}
	return strings.TrimRight(trimmed, "/"), nil
}

// SendMessage relays a message to all other registered agents. The message
// may be a plain string or a StructuredMessage.
func (c *Client) SendMessage(ctx context.Context, sender string, message any) error {
	return c.doJSON(ctx, http.MethodPost, "/subagents/message", messageRequest{
		Sender:  sender,
		Message: message,
	}, nil)
}

// Unread fetches and drains the queued messages addressed to name.
func (c *Client) Unread(ctx context.Context, name string) ([]UnreadMessage, error) {
	var resp unreadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/subagents/unread", unreadRequest{SubagentName: name}, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Register announces a new agent under its session id and nickname.
func (c *Client) Register(ctx context.Context, sessionID, name, subagentType string) error {
	return c.doJSON(ctx, http.MethodPost, "/subagents/register", registerRequest{
		SessionID:    sessionID,
		Name:         name,
		SubagentType: subagentType,
	}, nil)
}

// SetInitialPrompt records the assignment text for a registered agent.
func (c *Client) SetInitialPrompt(ctx context.Context, sessionID, name, prompt string) error {
	path := fmt.Sprintf("/subagents/%s/%s", url.PathEscape(sessionID), url.PathEscape(name))
	return c.doJSON(ctx, http.MethodPatch, path, initialPromptRequest{InitialPrompt: prompt}, nil)
}

// UpdateCompletion reports final state for a registered agent. Callers that
// treat a missing registration as benign should check for a 404 APIError.
func (c *Client) UpdateCompletion(ctx context.Context, update CompletionUpdate) error {
	if update.CompletionMetadata == nil {
		update.CompletionMetadata = map[string]any{}
	}
	if update.ToolCalls == nil {
		update.ToolCalls = []any{}
	}
	return c.doJSON(ctx, http.MethodPost, "/subagents/update-completion", update, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	endpoint, err := c.buildURL(path)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload apiErrorPayload
		if len(data) > 0 && json.Unmarshal(data, &payload) == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		}
		if apiErr.Code == "" && apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if respBody == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) buildURL(path string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
