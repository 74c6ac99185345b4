package biz

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

const (
	// ReasonGraphCycle marks an alias chain that never reaches a terminal tag.
	ReasonGraphCycle = "GRAPH_CYCLE"
	// ReasonDataConsistency marks contradictory input, e.g. overlapping duplicate groups.
	ReasonDataConsistency = "DATA_CONSISTENCY"
	// ReasonMalformedInput marks an input row that cannot be parsed.
	ReasonMalformedInput = "MALFORMED_INPUT"
)

func ErrorGraphCycle(format string, args ...interface{}) *errors.Error {
	return errors.New(422, ReasonGraphCycle, fmt.Sprintf(format, args...))
}

func IsGraphCycle(err error) bool {
	if err == nil {
		return false
	}
	e := errors.FromError(err)
	return e.Reason == ReasonGraphCycle && e.Code == 422
}

func ErrorDataConsistency(format string, args ...interface{}) *errors.Error {
	return errors.New(409, ReasonDataConsistency, fmt.Sprintf(format, args...))
}

func IsDataConsistency(err error) bool {
	if err == nil {
		return false
	}
	e := errors.FromError(err)
	return e.Reason == ReasonDataConsistency && e.Code == 409
}

func ErrorMalformedInput(format string, args ...interface{}) *errors.Error {
	return errors.New(400, ReasonMalformedInput, fmt.Sprintf(format, args...))
}

func IsMalformedInput(err error) bool {
	if err == nil {
		return false
	}
	e := errors.FromError(err)
	return e.Reason == ReasonMalformedInput && e.Code == 400
}

// StageError names the pipeline stage that aborted the run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
