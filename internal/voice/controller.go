package voice

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/agent"
	"github.com/Asgar77/goodminds-app/internal/speech"
	"github.com/Asgar77/goodminds-app/internal/store"
)

// Options tune a Controller.
type Options struct {
	// DefaultTopic is recorded when StartSession is given no topic.
	DefaultTopic string
	// ManualTicks disables the per-second timer; elapsed time then only
	// advances through Tick.
	ManualTicks bool
	Now         func() time.Time
}

// Controller is the state machine of one user's voice session. All methods
// are safe for concurrent use; the lock is never held across remote calls.
type Controller struct {
	agent      agent.Agent
	speaker    Speaker
	recognizer speech.Recognizer
	sessions   SessionStore
	log        *zap.Logger
	opts       Options

	mu            sync.Mutex
	state         State
	user          User
	topic         string
	sessionID     string
	muted         bool
	busy          bool
	elapsed       int
	turns         []Turn
	notice        string
	epoch         uint64
	cancelCapture context.CancelFunc
	stopTicker    chan struct{}
}

func NewController(a agent.Agent, sp Speaker, rec speech.Recognizer, sessions SessionStore, log *zap.Logger, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.DefaultTopic == "" {
		opts.DefaultTopic = "General wellness check-in"
	}
	return &Controller{
		agent:      a,
		speaker:    sp,
		recognizer: rec,
		sessions:   sessions,
		log:        log.Named("voice"),
		opts:       opts,
		state:      StateIdle,
	}
}

// StartSession connects to the agent, records the session start and plays
// the greeting. A failed probe leaves the controller in StateError without
// writing anything. A failed start record is returned as *store.WriteError
// while the call stays active.
func (c *Controller) StartSession(ctx context.Context, user *User, topic string) error {
	if user == nil || user.ID == "" {
		return ErrAuthRequired
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = c.opts.DefaultTopic
	}

	c.mu.Lock()
	if c.state != StateIdle && c.state != StateError {
		s := c.state
		c.mu.Unlock()
		return invalidState("start session", s)
	}
	c.epoch++
	epoch := c.epoch
	c.state = StateConnecting
	c.user = *user
	c.topic = topic
	c.sessionID = ""
	c.muted = false
	c.busy = true
	c.elapsed = 0
	c.turns = nil
	c.notice = ""
	c.mu.Unlock()

	log := c.log.With(zap.String("user_id", user.ID))

	if err := c.agent.Probe(ctx); err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			return nil
		}
		c.state = StateError
		c.busy = false
		c.notice = noticeFor(err)
		log.Warn("voice agent probe failed", zap.String("kind", string(agent.KindOf(err))), zap.Error(err))
		return err
	}

	sessionID, startErr := c.sessions.StartSession(ctx, user.ID, topic, c.opts.Now())

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		if startErr == nil && sessionID != "" {
			// Ended while the start record was being written; close it so it
			// does not stay active.
			c.recordEnd(ctx, pendingEnd{userID: user.ID, sessionID: sessionID, topic: topic}, true)
		}
		return nil
	}
	if startErr != nil {
		var we *store.WriteError
		if !errors.As(startErr, &we) {
			startErr = &store.WriteError{Path: store.Collection(user.ID, "taraSessions"), Err: startErr}
		}
		c.notice = noticeFor(startErr)
		log.Error("failed to record session start", zap.Error(startErr))
	}
	c.sessionID = sessionID
	c.state = StateAwaiting
	if !c.opts.ManualTicks {
		c.startTickerLocked()
	}
	c.mu.Unlock()

	log.Info("voice session started", zap.String("session_id", sessionID), zap.String("topic", topic))

	greeting, err := c.agent.Greet(ctx)
	fallback := false
	if err != nil {
		log.Warn("greeting failed, using local greeting", zap.String("kind", string(agent.KindOf(err))), zap.Error(err))
		greeting = FallbackGreeting
		fallback = true
	}
	c.deliver(ctx, epoch, Turn{Speaker: agent.RoleAgent, Text: greeting, Fallback: fallback}, err)
	return startErr
}

// SubmitUtterance sends typed or already transcribed text to the agent and
// returns the agent's turn. An agent failure yields a fallback turn, not an error.
func (c *Controller) SubmitUtterance(ctx context.Context, text string) (Turn, error) {
	return c.submit(ctx, text, nil)
}

func (c *Controller) submit(ctx context.Context, text string, confidence *float64) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyUtterance
	}

	c.mu.Lock()
	if c.state != StateReady && c.state != StateListening {
		s := c.state
		c.mu.Unlock()
		return Turn{}, invalidState("send a message", s)
	}
	if c.busy {
		c.mu.Unlock()
		return Turn{}, ErrBusy
	}
	c.busy = true
	return c.exchangeLocked(ctx, text, confidence)
}

// exchangeLocked is entered with c.mu held and busy set. It appends the user
// turn, releases the lock for the agent call and delivers the reply.
func (c *Controller) exchangeLocked(ctx context.Context, text string, confidence *float64) (Turn, error) {
	epoch := c.epoch
	userID := c.user.ID
	history := c.historyLocked()
	c.turns = append(c.turns, Turn{Speaker: agent.RoleUser, Text: text, At: c.opts.Now(), Confidence: confidence})
	c.state = StateAwaiting
	c.notice = ""
	c.mu.Unlock()

	reply, err := c.agent.Send(ctx, history, text)
	var ae *agent.Error
	if errors.As(err, &ae) && !ae.Retryable() {
		c.log.Error("agent rejected the session",
			zap.String("user_id", userID), zap.String("kind", string(ae.Kind)), zap.Error(err))
		return Turn{}, c.fail(ctx, epoch, err)
	}
	fallback := false
	if err != nil {
		c.log.Warn("agent reply failed, using fallback",
			zap.String("user_id", userID), zap.String("kind", string(agent.KindOf(err))), zap.Error(err))
		reply = FallbackReply
		fallback = true
	}
	return c.deliver(ctx, epoch, Turn{Speaker: agent.RoleAgent, Text: reply, Fallback: fallback}, err), nil
}

// deliver appends an agent turn, speaks it and returns to Ready. Results
// arriving after the session ended are dropped.
func (c *Controller) deliver(ctx context.Context, epoch uint64, turn Turn, cause error) Turn {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return Turn{}
	}
	turn.At = c.opts.Now()
	c.turns = append(c.turns, turn)
	idx := len(c.turns) - 1
	if cause != nil {
		c.notice = noticeFor(cause)
	}
	c.state = StateSpeaking
	c.mu.Unlock()

	var audioID string
	if c.speaker != nil {
		id, err := c.speaker.Speak(ctx, turn.Text)
		if err != nil {
			c.log.Warn("speech synthesis failed", zap.Error(err))
		}
		audioID = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return Turn{}
	}
	c.turns[idx].AudioID = audioID
	c.state = StateReady
	c.busy = false
	return c.turns[idx]
}

func (c *Controller) historyLocked() []agent.Message {
	history := make([]agent.Message, 0, len(c.turns))
	for _, t := range c.turns {
		history = append(history, agent.Message{Role: t.Speaker, Text: t.Text})
	}
	return history
}

// SubmitAudio transcribes one recorded utterance and continues as
// SubmitUtterance. Capture failures are returned as *speech.CaptureError and
// leave the call Ready.
func (c *Controller) SubmitAudio(ctx context.Context, audio io.Reader, filename string) (Turn, error) {
	c.mu.Lock()
	if c.state != StateReady && c.state != StateListening {
		s := c.state
		c.mu.Unlock()
		return Turn{}, invalidState("listen", s)
	}
	if c.muted {
		c.mu.Unlock()
		return Turn{}, ErrMuted
	}
	if c.busy {
		c.mu.Unlock()
		return Turn{}, ErrBusy
	}
	if c.recognizer == nil {
		c.mu.Unlock()
		return Turn{}, &speech.CaptureError{Kind: speech.CaptureTransport, Err: errors.New("speech recognition is not configured")}
	}
	c.busy = true
	c.state = StateListening
	epoch := c.epoch
	captureCtx, cancel := context.WithCancel(ctx)
	c.cancelCapture = cancel
	c.mu.Unlock()

	transcript, err := c.recognizer.Recognize(captureCtx, audio, filename)
	cancel()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return Turn{}, nil
	}
	c.cancelCapture = nil
	if err == nil && strings.TrimSpace(transcript.Text) == "" {
		err = &speech.CaptureError{Kind: speech.CaptureNoSpeech}
	}
	if err != nil {
		var ce *speech.CaptureError
		if !errors.As(err, &ce) {
			err = &speech.CaptureError{Kind: speech.CaptureTransport, Err: err}
		}
		c.state = StateReady
		c.busy = false
		c.notice = noticeFor(err)
		c.mu.Unlock()
		return Turn{}, err
	}
	confidence := transcript.Confidence
	return c.exchangeLocked(ctx, strings.TrimSpace(transcript.Text), &confidence)
}

// ReportCaptureFailure records a capture failure detected on the client,
// such as a denied microphone permission.
func (c *Controller) ReportCaptureFailure(kind speech.CaptureKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Active() {
		return invalidState("report a capture failure", c.state)
	}
	err := &speech.CaptureError{Kind: kind}
	c.notice = noticeFor(err)
	if c.state == StateListening && !c.busy {
		c.state = StateReady
	}
	return err
}

// SetMuted suppresses local microphone capture. Muting cancels a recognition
// in progress; agent playback is unaffected.
func (c *Controller) SetMuted(muted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Active() {
		return invalidState("change mute", c.state)
	}
	c.muted = muted
	if muted && c.cancelCapture != nil {
		c.cancelCapture()
		c.cancelCapture = nil
	}
	return nil
}

// EndSession hangs up. Only a session that became active, recorded its start
// and ran for at least a second gets an end record.
func (c *Controller) EndSession(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == StateIdle:
		c.mu.Unlock()
		return invalidState("end session", StateIdle)
	case c.state == StateEnded:
		c.mu.Unlock()
		return nil
	case !c.state.Active():
		c.epoch++
		c.haltLocked()
		c.state = StateIdle
		c.mu.Unlock()
		return nil
	}

	c.epoch++
	c.haltLocked()
	c.state = StateEnded
	rec := c.pendingEndLocked()
	c.mu.Unlock()

	err := c.recordEnd(ctx, rec, false)
	c.log.Info("voice session ended", zap.String("user_id", rec.userID),
		zap.String("session_id", rec.sessionID), zap.String("duration", FormatDuration(rec.elapsed)))

	c.mu.Lock()
	c.state = StateIdle
	if err != nil {
		c.notice = noticeFor(err)
	}
	c.mu.Unlock()
	return err
}

// fail hangs up after a terminal agent error. The session record is closed as
// by EndSession and the controller settles in StateError until restarted.
func (c *Controller) fail(ctx context.Context, epoch uint64, cause error) error {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil
	}
	c.epoch++
	c.haltLocked()
	c.state = StateEnded
	rec := c.pendingEndLocked()
	c.mu.Unlock()

	_ = c.recordEnd(ctx, rec, false)

	c.mu.Lock()
	c.state = StateError
	c.notice = noticeFor(cause)
	c.mu.Unlock()
	return cause
}

type pendingEnd struct {
	userID    string
	sessionID string
	topic     string
	elapsed   int
	turns     int
}

func (c *Controller) pendingEndLocked() pendingEnd {
	return pendingEnd{
		userID:    c.user.ID,
		sessionID: c.sessionID,
		topic:     c.topic,
		elapsed:   c.elapsed,
		turns:     len(c.turns),
	}
}

// recordEnd writes the end record of a persisted session. Without force,
// sessions that never ran for a second are left alone.
func (c *Controller) recordEnd(ctx context.Context, rec pendingEnd, force bool) error {
	if rec.sessionID == "" || (rec.elapsed <= 0 && !force) {
		return nil
	}
	err := c.sessions.EndSession(ctx, rec.userID, rec.sessionID, EndRecord{
		EndTime:            c.opts.Now(),
		Duration:           FormatDuration(rec.elapsed),
		Topic:              rec.topic,
		ConversationLength: rec.turns,
	})
	if err == nil {
		return nil
	}
	var we *store.WriteError
	if !errors.As(err, &we) {
		err = &store.WriteError{Path: store.Doc(rec.userID, "taraSessions", rec.sessionID), Err: err}
	}
	c.log.Error("failed to record session end", zap.String("user_id", rec.userID), zap.Error(err))
	return err
}

// haltLocked stops the timer and any capture in progress.
func (c *Controller) haltLocked() {
	if c.cancelCapture != nil {
		c.cancelCapture()
		c.cancelCapture = nil
	}
	if c.stopTicker != nil {
		close(c.stopTicker)
		c.stopTicker = nil
	}
	c.busy = false
}

// Tick advances the session clock by one second while a call is active.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Active() {
		c.elapsed++
	}
}

func (c *Controller) startTickerLocked() {
	stop := make(chan struct{})
	c.stopTicker = stop
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.Tick()
			}
		}
	}()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:     c.state,
		Muted:     c.muted,
		Busy:      c.busy,
		Elapsed:   c.elapsed,
		Duration:  FormatDuration(c.elapsed),
		Topic:     c.topic,
		SessionID: c.sessionID,
		Turns:     append([]Turn(nil), c.turns...),
		Notice:    c.notice,
	}
}

// Clip returns synthesized audio when the speaker keeps clips.
func (c *Controller) Clip(id string) (speech.Clip, bool) {
	src, ok := c.speaker.(interface {
		Clip(id string) (speech.Clip, bool)
	})
	if !ok {
		return speech.Clip{}, false
	}
	return src.Clip(id)
}

func noticeFor(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	var we *store.WriteError
	if errors.As(err, &we) {
		return "We couldn't save your session record. Please try again."
	}
	return "Something went wrong. Please try again."
}
