package speech

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

	"github.com/sashabaranov/go-openai"
)

// ElevenLabsTTS synthesizes with an ElevenLabs voice.
type ElevenLabsTTS struct {
	baseURL string
	apiKey  string
	voiceID string
	http    *http.Client
}

func NewElevenLabsTTS(baseURL, apiKey, voiceID string) *ElevenLabsTTS {
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	return &ElevenLabsTTS{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		voiceID: voiceID,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (t *ElevenLabsTTS) Synthesize(ctx context.Context, text string) (Clip, error) {
	body, err := json.Marshal(struct {
		Text          string        `json:"text"`
		VoiceSettings voiceSettings `json:"voice_settings"`
	}{Text: text, VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5}})
	if err != nil {
		return Clip{}, err
	}

	endpoint := t.baseURL + "/v1/text-to-speech/" + url.PathEscape(t.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Clip{}, err
	}
	req.Header.Set("xi-api-key", t.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := t.http.Do(req)
	if err != nil {
		return Clip{}, fmt.Errorf("text-to-speech request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Clip{}, fmt.Errorf("text-to-speech: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Clip{}, fmt.Errorf("text-to-speech body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return Clip{ContentType: contentType, Data: data}, nil
}

// OpenAITTS synthesizes with the OpenAI speech endpoint.
type OpenAITTS struct {
	client *openai.Client
	model  string
	voice  string
}

func NewOpenAITTS(apiKey, baseURL, model, voice string) *OpenAITTS {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAITTS{client: openai.NewClientWithConfig(config), model: model, voice: voice}
}

func (t *OpenAITTS) Synthesize(ctx context.Context, text string) (Clip, error) {
	resp, err := t.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(t.model),
		Input:          text,
		Voice:          openai.SpeechVoice(t.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return Clip{}, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return Clip{}, fmt.Errorf("read speech: %w", err)
	}
	return Clip{ContentType: "audio/mpeg", Data: data}, nil
}
