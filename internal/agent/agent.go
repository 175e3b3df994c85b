// Package agent talks to the remote conversational companion.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Asgar77/goodminds-app/internal/config"
)

const (
	ProviderElevenLabs = "elevenlabs"
	ProviderOpenAI     = "openai"
)

// GreetingPrompt opens every session on behalf of the student.
const GreetingPrompt = "Hello TARA! I'm a student and I'd like to talk about managing academic stress and mental wellness."

// Persona is the companion's standing instruction.
const Persona = "You are TARA, a compassionate AI mental health companion specifically designed to support students. " +
	"You understand academic stress, social pressures, exam anxiety, and the unique challenges students face. " +
	"Provide empathetic, supportive responses while maintaining appropriate boundaries. " +
	"Always encourage students to seek professional help when needed."

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Message is one prior turn passed as context to Send.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Agent is a remote conversational endpoint. Errors are *Error.
type Agent interface {
	// Probe checks credentials and that the configured agent exists.
	Probe(ctx context.Context) error
	Greet(ctx context.Context) (string, error)
	Send(ctx context.Context, history []Message, text string) (string, error)
}

// New builds the agent selected by conf.Provider.
func New(conf config.AgentConfig, oa config.OpenAIConfig) (Agent, error) {
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	switch strings.ToLower(conf.Provider) {
	case ProviderElevenLabs:
		if conf.AgentID == "" {
			return nil, errors.New("agent.agent_id is required for the elevenlabs provider")
		}
		return NewElevenLabs(conf.BaseURL, conf.APIKey, conf.AgentID, timeout), nil
	case ProviderOpenAI:
		return NewOpenAI(oa.APIKey, oa.BaseURL, oa.Model), nil
	default:
		return nil, fmt.Errorf("unknown agent provider: %s", conf.Provider)
	}
}
