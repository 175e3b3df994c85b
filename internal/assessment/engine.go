// Package assessment scores questionnaires against per-assessment threshold
// tables and persists the outcome for a user.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Asgar77/goodminds-app/internal/store"
)

type State string

const (
	StateInProgress  State = "in_progress"
	StateReadyToSave State = "ready_to_save"
	StateSaved       State = "saved"
)

// Result is the interpretation of a complete attempt.
type Result struct {
	Percentage      float64  `json:"percentage"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// Attempt is one user's run through a definition. It is safe for concurrent use.
type Attempt struct {
	def *Definition

	mu       sync.Mutex
	answers  []int
	answered []bool
	pointer  int
	saved    bool
}

func NewAttempt(def *Definition) *Attempt {
	return &Attempt{
		def:      def,
		answers:  make([]int, def.QuestionCount()),
		answered: make([]bool, def.QuestionCount()),
	}
}

func (a *Attempt) Definition() *Definition { return a.def }

// SelectAnswer records value for the question at index. The pointer advances
// only when index is the current question and not the last one; earlier
// answers may be overwritten freely until the attempt is saved.
func (a *Attempt) SelectAnswer(index, value int) error {
	if index < 0 || index >= a.def.QuestionCount() {
		return fmt.Errorf("%w: %d", ErrQuestionOutOfRange, index)
	}
	if !a.def.validOption(value) {
		return fmt.Errorf("%w: %d", ErrInvalidOption, value)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saved {
		return ErrAlreadySaved
	}
	a.answers[index] = value
	a.answered[index] = true
	if index == a.pointer && index < a.def.QuestionCount()-1 {
		a.pointer++
	}
	return nil
}

// IsComplete reports whether every question has an answer.
func (a *Attempt) IsComplete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.unansweredLocked()) == 0
}

func (a *Attempt) unansweredLocked() []int {
	var missing []int
	for i, ok := range a.answered {
		if !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// Pointer is the index of the question currently presented.
func (a *Attempt) Pointer() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pointer
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *Attempt) stateLocked() State {
	switch {
	case a.saved:
		return StateSaved
	case len(a.unansweredLocked()) == 0:
		return StateReadyToSave
	default:
		return StateInProgress
	}
}

// Answers returns a copy of the answers; unanswered questions are nil.
func (a *Attempt) Answers() []*int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*int, len(a.answers))
	for i := range a.answers {
		if a.answered[i] {
			v := a.answers[i]
			out[i] = &v
		}
	}
	return out
}

// ComputeResult scores a complete attempt. It has no side effects.
func (a *Attempt) ComputeResult() (Result, error) {
	a.mu.Lock()
	answers := append([]int(nil), a.answers...)
	missing := a.unansweredLocked()
	a.mu.Unlock()

	if len(missing) > 0 {
		return Result{}, &PreconditionError{Op: "compute result", Unanswered: missing}
	}
	return Score(a.def, answers), nil
}

// Score computes the result for a full answer list of def.
func Score(def *Definition, answers []int) Result {
	total := 0
	for _, v := range answers {
		total += v
	}
	maxScore := def.QuestionCount() * def.MaxOptionValue()
	percentage := 100 * float64(total) / float64(maxScore)

	bucket := def.Classify(percentage)
	return Result{
		Percentage:      percentage,
		Summary:         bucket.Summary,
		Recommendations: append([]string(nil), bucket.Recommendations...),
	}
}

// DocumentWriter is the part of the document store SaveResult needs.
type DocumentWriter interface {
	Write(ctx context.Context, docPath string, fields map[string]any, opts store.WriteOptions) error
}

// SaveResult writes the attempt to users/{userID}/assessments/{id}, replacing
// any earlier result for the same assessment. A failed write leaves the
// attempt ready to save again.
func SaveResult(ctx context.Context, w DocumentWriter, userID string, a *Attempt, result Result) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.saved {
		return ErrAlreadySaved
	}
	if missing := a.unansweredLocked(); len(missing) > 0 {
		return &PreconditionError{Op: "save result", Unanswered: missing}
	}

	docPath := store.Doc(userID, "assessments", a.def.ID)
	fields := map[string]any{
		"answers":         append([]int(nil), a.answers...),
		"completedAt":     time.Now().UTC().Format(time.RFC3339Nano),
		"summary":         result.Summary,
		"recommendations": append([]string(nil), result.Recommendations...),
		"score":           result.Percentage,
		"type":            a.def.Type,
	}
	// The full field set is always supplied, so merge and replace agree.
	if err := w.Write(ctx, docPath, fields, store.WriteOptions{Merge: true}); err != nil {
		var we *store.WriteError
		if errors.As(err, &we) {
			return err
		}
		return &store.WriteError{Path: docPath, Err: err}
	}
	a.saved = true
	return nil
}
