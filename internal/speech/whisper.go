package speech

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Whisper recognizes speech with the OpenAI transcription API.
type Whisper struct {
	client   *openai.Client
	model    string
	language string
}

func NewWhisper(apiKey, baseURL, model, language string) *Whisper {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Whisper{client: openai.NewClientWithConfig(config), model: model, language: language}
}

func (w *Whisper) Recognize(ctx context.Context, audio io.Reader, filename string) (Transcript, error) {
	if filename == "" {
		filename = "utterance.webm"
	}
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: filename,
		Reader:   audio,
		Language: w.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Transcript{}, &CaptureError{Kind: captureKindFor(err), Err: err}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Transcript{}, &CaptureError{Kind: CaptureNoSpeech}
	}

	confidence := 1.0
	if n := len(resp.Segments); n > 0 {
		sum := 0.0
		for _, s := range resp.Segments {
			sum += s.AvgLogprob
		}
		confidence = math.Max(0, math.Min(1, math.Exp(sum/float64(n))))
	}
	return Transcript{Text: text, Confidence: confidence}, nil
}

func captureKindFor(err error) CaptureKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
		return CapturePermissionDenied
	}
	return CaptureTransport
}
