package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/agent"
	"github.com/Asgar77/goodminds-app/internal/assessment"
	"github.com/Asgar77/goodminds-app/internal/config"
	"github.com/Asgar77/goodminds-app/internal/database/dbtest"
	"github.com/Asgar77/goodminds-app/internal/repository"
	"github.com/Asgar77/goodminds-app/internal/store"
	"github.com/Asgar77/goodminds-app/internal/voice"
)

type echoAgent struct{}

func (echoAgent) Probe(ctx context.Context) error           { return nil }
func (echoAgent) Greet(ctx context.Context) (string, error) { return "Hello!", nil }
func (echoAgent) Send(ctx context.Context, history []agent.Message, text string) (string, error) {
	return text, nil
}

// client keeps the session cookie and echoes the latest CSRF token.
type client struct {
	t     *testing.T
	base  string
	http  *http.Client
	token string
}

func newServer(t *testing.T, loginPerMinute uint) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	db := dbtest.Open(t)
	st := store.New(db, log, nil)
	t.Cleanup(func() { _ = st.Close() })
	repo := repository.New(db, st)
	catalog, err := assessment.LoadCatalog("../../config/assessments.yaml")
	if err != nil {
		t.Fatal(err)
	}
	manager := voice.NewManager(func(string) *voice.Controller {
		return voice.NewController(echoAgent{}, nil, nil, repo, log, voice.Options{ManualTicks: true})
	}, log)

	engine := Setup(log, config.ServerConfig{
		SessionSecret:  "test-secret",
		AllowedOrigins: []string{"http://localhost:5173"},
		LoginPerMinute: loginPerMinute,
	}, Deps{Repo: repo, Catalog: catalog, Attempts: assessment.NewRegistry(), Voice: manager})

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	jar, _ := cookiejar.New(nil)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(csrfTokenHeaderKey, c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if tok := resp.Header.Get(csrfTokenHeaderKey); tok != "" {
		c.token = tok
	}
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (c *client) expect(method, path string, body any, want int) map[string]any {
	c.t.Helper()
	resp, out := c.do(method, path, body)
	if resp.StatusCode != want {
		c.t.Fatalf("%s %s = %d, want %d (%v)", method, path, resp.StatusCode, want, out)
	}
	return out
}

func TestSignInFlow(t *testing.T) {
	c := newServer(t, 5)

	c.expect(http.MethodGet, "/api/dashboard", nil, http.StatusUnauthorized)

	// Unsafe requests need the token handed out by an earlier response.
	token := c.token
	c.token = ""
	c.expect(http.MethodPost, "/api/auth/register", map[string]string{"email": "a@uni.edu", "password": "Str0ng!pass"}, http.StatusForbidden)
	if c.token != token {
		t.Fatalf("token changed within a session: %q -> %q", token, c.token)
	}
	c.expect(http.MethodPost, "/api/auth/register", map[string]string{"email": "a@uni.edu", "password": "weak"}, http.StatusBadRequest)
	c.expect(http.MethodPost, "/api/auth/register", map[string]string{"email": "a@uni.edu", "password": "Str0ng!pass", "displayName": "Ana"}, http.StatusCreated)
	c.expect(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@uni.edu", "password": "wrong"}, http.StatusUnauthorized)
	c.expect(http.MethodPost, "/api/auth/login", map[string]string{"email": "A@uni.edu", "password": "Str0ng!pass"}, http.StatusOK)

	me := c.expect(http.MethodGet, "/api/auth/me", nil, http.StatusOK)
	profile, _ := me["profile"].(map[string]any)
	if profile["displayName"] != "Ana" || profile["lastLogin"] == nil {
		t.Fatalf("me = %v", me)
	}

	c.expect(http.MethodPost, "/api/moods", map[string]string{"mood": "happy"}, http.StatusCreated)
	dash := c.expect(http.MethodGet, "/api/dashboard", nil, http.StatusOK)
	if feed, _ := dash["activity"].([]any); len(feed) != 1 {
		t.Fatalf("dashboard = %v", dash)
	}

	c.expect(http.MethodPost, "/api/voice/start", nil, http.StatusOK)
	c.expect(http.MethodPost, "/api/auth/logout", nil, http.StatusNoContent)
	c.expect(http.MethodGet, "/api/dashboard", nil, http.StatusUnauthorized)
}

func TestLoginRateLimited(t *testing.T) {
	c := newServer(t, 2)
	c.expect(http.MethodGet, "/api/auth/csrf", nil, http.StatusNoContent)

	creds := map[string]string{"email": "x@uni.edu", "password": "nope"}
	c.expect(http.MethodPost, "/api/auth/login", creds, http.StatusUnauthorized)
	c.expect(http.MethodPost, "/api/auth/login", creds, http.StatusUnauthorized)
	out := c.expect(http.MethodPost, "/api/auth/login", creds, http.StatusTooManyRequests)
	if out["retryable"] != true {
		t.Fatalf("rate limit body = %v", out)
	}
}

func TestSecurityHeaders(t *testing.T) {
	c := newServer(t, 5)
	resp, _ := c.do(http.MethodGet, "/healthz", nil)
	if resp.Header.Get("X-Frame-Options") != "DENY" || resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("headers = %v", resp.Header)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatal("missing request id")
	}
}
