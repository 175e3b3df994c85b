package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultElevenLabsURL = "https://api.elevenlabs.io"

// ElevenLabs is a conversational agent hosted by ElevenLabs.
type ElevenLabs struct {
	baseURL string
	apiKey  string
	agentID string
	http    *http.Client
}

func NewElevenLabs(baseURL, apiKey, agentID string, timeout time.Duration) *ElevenLabs {
	if baseURL == "" {
		baseURL = defaultElevenLabsURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ElevenLabs{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		agentID: agentID,
		http:    &http.Client{Timeout: timeout},
	}
}

// Probe requests a signed conversation url, which fails for bad keys and
// unknown agents without starting a conversation.
func (c *ElevenLabs) Probe(ctx context.Context) error {
	endpoint := c.baseURL + "/v1/convai/conversation/get-signed-url?agent_id=" + url.QueryEscape(c.agentID)
	var out struct {
		SignedURL string `json:"signed_url"`
	}
	if err := c.do(ctx, "probe", http.MethodGet, endpoint, nil, &out); err != nil {
		return err
	}
	if out.SignedURL == "" {
		return &Error{Kind: KindMalformed, Op: "probe", Err: errors.New("empty signed_url")}
	}
	return nil
}

func (c *ElevenLabs) Greet(ctx context.Context) (string, error) {
	return c.chat(ctx, "greet", nil, GreetingPrompt)
}

func (c *ElevenLabs) Send(ctx context.Context, history []Message, text string) (string, error) {
	return c.chat(ctx, "send", history, text)
}

type chatRequest struct {
	Text    string    `json:"text"`
	History []Message `json:"history,omitempty"`
}

func (c *ElevenLabs) chat(ctx context.Context, op string, history []Message, text string) (string, error) {
	endpoint := c.baseURL + "/v1/agents/" + url.PathEscape(c.agentID) + "/chat"
	var out struct {
		Text string `json:"text"`
	}
	if err := c.do(ctx, op, http.MethodPost, endpoint, chatRequest{Text: text, History: history}, &out); err != nil {
		return "", err
	}
	reply := strings.TrimSpace(out.Text)
	if reply == "" {
		return "", &Error{Kind: KindMalformed, Op: op, Err: errors.New("empty reply")}
	}
	return reply, nil
}

func (c *ElevenLabs) do(ctx context.Context, op, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindMalformed, Op: op, Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{
			Kind:   kindForStatus(resp.StatusCode),
			Op:     op,
			Status: resp.StatusCode,
			Err:    errors.New(strings.TrimSpace(string(detail))),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindMalformed, Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}
