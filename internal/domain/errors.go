package domain

import "errors"

// Failure taxonomy shared by the engine, repositories and controllers.
// Callers match with errors.Is; ErrConcurrentModification is retryable
// by re-reading and re-applying, the engine never retries on its own.
var (
	ErrNotFound               = errors.New("record not found")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrDuplicateApproval      = errors.New("approver has already voted")
	ErrTemplateNotFound       = errors.New("template not found")
	ErrCyclicDependency       = errors.New("cyclic dependency")
	ErrDependencyTooDeep      = errors.New("dependency chain too deep")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrValidation             = errors.New("validation failed")
)
