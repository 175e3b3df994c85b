package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type countingSynth struct{ n int }

func (s *countingSynth) Synthesize(_ context.Context, text string) (Clip, error) {
	s.n++
	if text == "" {
		return Clip{}, errors.New("nothing to say")
	}
	return Clip{ContentType: "audio/mpeg", Data: []byte(fmt.Sprintf("%d:%s", s.n, text))}, nil
}

func TestClipSpeakerKeepsLatestClips(t *testing.T) {
	sp := NewClipSpeaker(&countingSynth{}, 2)
	ctx := context.Background()

	var ids []string
	for _, text := range []string{"one", "two", "three"} {
		id, err := sp.Speak(ctx, text)
		if err != nil {
			t.Fatalf("Speak: %v", err)
		}
		ids = append(ids, id)
	}
	if _, ok := sp.Clip(ids[0]); ok {
		t.Fatalf("oldest clip should have been evicted")
	}
	clip, ok := sp.Clip(ids[2])
	if !ok || string(clip.Data) != "3:three" {
		t.Fatalf("latest clip=%q ok=%v", clip.Data, ok)
	}
	if _, err := sp.Speak(ctx, ""); err == nil {
		t.Fatalf("expected synthesis error")
	}

	sp.Reset()
	if _, ok := sp.Clip(ids[2]); ok {
		t.Fatalf("Reset kept clips")
	}
}

func TestElevenLabsTTS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/voice-1" || r.Header.Get("xi-api-key") != "key" {
			t.Errorf("unexpected request %s", r.URL.Path)
		}
		var body struct {
			Text          string        `json:"text"`
			VoiceSettings voiceSettings `json:"voice_settings"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Text != "hello" || body.VoiceSettings.Stability != 0.5 {
			t.Errorf("body=%+v", body)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	clip, err := NewElevenLabsTTS(srv.URL, "key", "voice-1").Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if clip.ContentType != "audio/mpeg" || string(clip.Data) != "ID3audio" {
		t.Fatalf("clip=%+v", clip)
	}
}

func TestWhisperRecognize(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantText string
		wantKind CaptureKind
	}{
		{
			name:     "transcript",
			status:   http.StatusOK,
			body:     `{"task":"transcribe","text":" I am worried about exams ","segments":[{"id":0,"avg_logprob":0}]}`,
			wantText: "I am worried about exams",
		},
		{name: "silence", status: http.StatusOK, body: `{"task":"transcribe","text":"   "}`, wantKind: CaptureNoSpeech},
		{name: "bad key", status: http.StatusUnauthorized, body: `{"error":{"message":"invalid key"}}`, wantKind: CapturePermissionDenied},
		{name: "outage", status: http.StatusServiceUnavailable, body: `{"error":{"message":"down"}}`, wantKind: CaptureTransport},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/audio/transcriptions" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(c.status)
				_, _ = io.WriteString(w, c.body)
			}))
			defer srv.Close()

			got, err := NewWhisper("key", srv.URL+"/v1", "whisper-1", "en").Recognize(context.Background(), strings.NewReader("RIFF"), "a.wav")
			if c.wantKind != "" {
				var ce *CaptureError
				if !errors.As(err, &ce) || ce.Kind != c.wantKind {
					t.Fatalf("err=%v, want capture kind %q", err, c.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Recognize: %v", err)
			}
			if got.Text != c.wantText || got.Confidence != 1 {
				t.Fatalf("transcript=%+v", got)
			}
		})
	}
}

func TestParseCaptureKind(t *testing.T) {
	for in, want := range map[string]CaptureKind{
		"not-allowed":       CapturePermissionDenied,
		"no-speech":         CaptureNoSpeech,
		"network":           CaptureTransport,
		"permission_denied": CapturePermissionDenied,
	} {
		got, err := ParseCaptureKind(in)
		if err != nil || got != want {
			t.Errorf("ParseCaptureKind(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	if _, err := ParseCaptureKind("bogus"); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}
