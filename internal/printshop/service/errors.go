package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransition means the order's current stage does not support
	// the requested operation. Rejected outright, no mutation.
	ErrInvalidTransition = errors.New("operation not valid for current stage")

	// ErrMissingReason means a return was requested without a reason.
	ErrMissingReason = errors.New("return reason is required")
)

// Guard requirement kinds. They are distinguishable failure reasons: the
// caller needs to know whether to finish the checklist or upload a file.
const (
	RequirementChecklist  = "checklist"
	RequirementAttachment = "attachment"
)

// GuardError reports which forward-transition requirement failed and what
// exactly is missing. No state mutation accompanies it; the caller supplies
// the missing input and retries.
type GuardError struct {
	Requirement string
	Missing     []string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("%s incomplete: missing %s", e.Requirement, strings.Join(e.Missing, ", "))
}
