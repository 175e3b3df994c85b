package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestElevenLabsProbeStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"bad key"}`, KindCredential},
		{"forbidden", http.StatusForbidden, `{}`, KindCredential},
		{"unknown agent", http.StatusNotFound, `{}`, KindNotFound},
		{"server error", http.StatusBadGateway, ``, KindNetwork},
		{"rate limited", http.StatusTooManyRequests, ``, KindNetwork},
		{"garbage body", http.StatusOK, `not json`, KindMalformed},
		{"empty url", http.StatusOK, `{"signed_url":""}`, KindMalformed},
		{"ok", http.StatusOK, `{"signed_url":"wss://example/x"}`, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/convai/conversation/get-signed-url" || r.URL.Query().Get("agent_id") != "agent-1" {
					t.Errorf("unexpected request %s", r.URL)
				}
				if r.Header.Get("xi-api-key") != "key" {
					t.Errorf("missing api key header")
				}
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			}))
			defer srv.Close()

			err := NewElevenLabs(srv.URL, "key", "agent-1", time.Second).Probe(context.Background())
			if got := KindOf(err); got != c.want {
				t.Fatalf("kind=%q (err=%v), want %q", got, err, c.want)
			}
		})
	}
}

func TestElevenLabsSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/agents/agent-1/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Text != "I feel stressed" || len(req.History) != 1 {
			t.Errorf("request=%+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  That sounds hard.  "})
	}))
	defer srv.Close()

	c := NewElevenLabs(srv.URL, "key", "agent-1", time.Second)
	reply, err := c.Send(context.Background(), []Message{{Role: RoleAgent, Text: "Hi"}}, "I feel stressed")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != "That sounds hard." {
		t.Fatalf("reply=%q", reply)
	}
}

func TestElevenLabsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewElevenLabs(url, "key", "agent-1", time.Second).Greet(context.Background())
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind != KindNetwork || !ae.Retryable() {
		t.Fatalf("err=%v, want retryable network error", err)
	}
}

func TestOpenAIAgent(t *testing.T) {
	var gotMessages []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models/gpt-test":
			_, _ = w.Write([]byte(`{"id":"gpt-test","object":"model","owned_by":"test"}`))
		case "/v1/models/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"no such model","type":"invalid_request_error"}}`))
		case "/v1/chat/completions":
			var body struct {
				Messages []map[string]any `json:"messages"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			gotMessages = body.Messages
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Hi, I'm TARA."},"finish_reason":"stop"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	a := NewOpenAI("key", srv.URL+"/v1", "gpt-test")
	if err := a.Probe(context.Background()); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	reply, err := a.Greet(context.Background())
	if err != nil || reply != "Hi, I'm TARA." {
		t.Fatalf("Greet=%q err=%v", reply, err)
	}
	if len(gotMessages) != 2 || gotMessages[0]["role"] != "system" || gotMessages[1]["content"] != GreetingPrompt {
		t.Fatalf("messages=%v", gotMessages)
	}

	missing := NewOpenAI("key", srv.URL+"/v1", "missing")
	if kind := KindOf(missing.Probe(context.Background())); kind != KindNotFound {
		t.Fatalf("kind=%q, want not_found", kind)
	}
}
