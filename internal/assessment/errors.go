package assessment

import (
	"errors"
	"fmt"
)

var (
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrInvalidOption      = errors.New("value is not an option of this assessment")
	ErrAlreadySaved       = errors.New("attempt already saved")
)

// PreconditionError reports an operation invoked before the attempt allowed it,
// such as scoring with unanswered questions.
type PreconditionError struct {
	Op         string
	Unanswered []int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %d question(s) unanswered", e.Op, len(e.Unanswered))
}
