// Package speech turns user audio into text and companion replies into audio.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Asgar77/goodminds-app/internal/config"
)

const (
	ProviderElevenLabs = "elevenlabs"
	ProviderOpenAI     = "openai"
)

// Transcript is a single recognized utterance.
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognizer performs single-shot recognition of one recorded utterance.
type Recognizer interface {
	Recognize(ctx context.Context, audio io.Reader, filename string) (Transcript, error)
}

// Clip is synthesized audio.
type Clip struct {
	ContentType string
	Data        []byte
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Clip, error)
}

type CaptureKind string

const (
	CapturePermissionDenied CaptureKind = "permission_denied"
	CaptureNoSpeech         CaptureKind = "no_speech"
	CaptureTransport        CaptureKind = "transport"
)

// CaptureError is a failed recognition. None of its kinds end a session.
type CaptureError struct {
	Kind CaptureKind
	Err  error
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return "speech capture: " + string(e.Kind)
	}
	return fmt.Sprintf("speech capture: %s: %v", e.Kind, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

func (e *CaptureError) UserMessage() string {
	switch e.Kind {
	case CapturePermissionDenied:
		return "Microphone access was denied. Allow microphone access and try again."
	case CaptureNoSpeech:
		return "We didn't catch that. Please try speaking again."
	default:
		return "Speech recognition is unavailable right now. Please try again or type your message."
	}
}

// ParseCaptureKind accepts the kinds a browser reports for a failed capture.
func ParseCaptureKind(s string) (CaptureKind, error) {
	switch k := CaptureKind(strings.ToLower(strings.TrimSpace(s))); k {
	case CapturePermissionDenied, CaptureNoSpeech, CaptureTransport:
		return k, nil
	case "not-allowed", "service-not-allowed":
		return CapturePermissionDenied, nil
	case "no-speech", "aborted":
		return CaptureNoSpeech, nil
	case "network", "audio-capture":
		return CaptureTransport, nil
	default:
		return "", fmt.Errorf("unknown capture error %q", s)
	}
}

// NewSynthesizer builds the synthesizer selected by conf.TTSProvider.
func NewSynthesizer(conf config.SpeechConfig, agentConf config.AgentConfig, oa config.OpenAIConfig) (Synthesizer, error) {
	switch strings.ToLower(conf.TTSProvider) {
	case ProviderElevenLabs:
		if conf.VoiceID == "" {
			return nil, errors.New("speech.voice_id is required for the elevenlabs provider")
		}
		return NewElevenLabsTTS(agentConf.BaseURL, agentConf.APIKey, conf.VoiceID), nil
	case ProviderOpenAI:
		return NewOpenAITTS(oa.APIKey, oa.BaseURL, conf.TTSModel, conf.VoiceID), nil
	default:
		return nil, fmt.Errorf("unknown tts provider: %s", conf.TTSProvider)
	}
}
