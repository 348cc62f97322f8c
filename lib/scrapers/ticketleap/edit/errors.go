package edit

import (
	"errors"
	"fmt"
)

// Stage is the step an operation was in.
type Stage string

const (
	StageResolving    Stage = "resolving"
	StageFetchingForm Stage = "fetching_form"
	StageExtracting   Stage = "extracting"
	StageBuilding     Stage = "building"
	StageSubmitting   Stage = "submitting"
	StageSuccess      Stage = "success"
	StageFailed       Stage = "failed"
)

var (
	ErrNoTicketRef     = errors.New("a ticket name or uuid is required")
	ErrTooManyRows     = errors.New("formset is full")
	ErrUnsupportedFile = errors.New("unsupported image file")
)

// OperationError is returned by every operation of Client. Key is the slug,
// date or ticket name the operation failed on.
type OperationError struct {
	Op    string
	Key   string
	Stage Stage
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %q failed while %s: %s", e.Op, e.Key, e.Stage, e.Err.Error())
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
