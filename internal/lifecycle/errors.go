package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Invariant violation codes (E300-E309).
const (
	// ErrCodeSingleInProgress: more than one story holds In Progress.
	ErrCodeSingleInProgress = "E301"
)

// Transaction rejection codes (E400-E409).
const (
	ErrCodeNotInProgress    = "E401" // story is not In Progress
	ErrCodeBlockingOpenItem = "E402" // an open blocking question references the story
	ErrCodeConfidenceLow    = "E403" // confidence below maximum
	ErrCodeNoScenario       = "E404" // no fully specified acceptance scenario
	ErrCodeNoRequirement    = "E405" // no functional requirement attached
	ErrCodeAlreadyGraduated = "E406" // story already graduated
	ErrCodeNotGraduated     = "E407" // revision target is not graduated
	ErrCodeInvalidScope     = "E408" // unrecognized revision scope
)

// InvariantError reports a broken registry-wide invariant.
type InvariantError struct {
	Code    string
	Message string
	Stories []int
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if len(e.Stories) > 0 {
		nums := make([]string, len(e.Stories))
		for i, n := range e.Stories {
			nums[i] = fmt.Sprintf("%d", n)
		}
		return fmt.Sprintf("%s: %s (stories: %s)", e.Code, e.Message, strings.Join(nums, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvariantError reports whether err is (or wraps) an InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// RejectError reports a refused transition. Nothing was modified: the
// caller resolves the named precondition and reissues the transition.
type RejectError struct {
	Code         string
	Story        int
	Precondition string
	Message      string
}

// Error implements the error interface.
func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: story %d: %s: %s", e.Code, e.Story, e.Precondition, e.Message)
}

// IsRejectError reports whether err is (or wraps) a RejectError.
func IsRejectError(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

// NewRejectError creates a RejectError for an unmet precondition.
func NewRejectError(code string, story int, precondition, message string) *RejectError {
	return &RejectError{Code: code, Story: story, Precondition: precondition, Message: message}
}
