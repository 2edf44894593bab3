package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig indicates required configuration is missing or invalid.
	// Fatal for the run.
	ErrConfig = errors.New("configuration error")

	// ErrParse indicates a malformed input row. The row is skipped.
	ErrParse = errors.New("parse error")

	// ErrClassification indicates the classifier response could not be used.
	// Fatal for the batch.
	ErrClassification = errors.New("classification error")

	// ErrRoutingGap indicates no target collection resolved for a task.
	ErrRoutingGap = errors.New("routing gap")

	// ErrRemoteOperation indicates a store call failed after retries.
	ErrRemoteOperation = errors.New("remote operation failed")

	// ErrMalformedDuration indicates a duration that is not H:MM:SS.
	ErrMalformedDuration = fmt.Errorf("%w: malformed duration", ErrParse)

	// ErrInvalidBillingAnchor indicates a billing anchor day that cannot be
	// placed in the billing month.
	ErrInvalidBillingAnchor = errors.New("invalid billing anchor")

	// ErrUnknownTask indicates a classifier entry that references no ingested task.
	ErrUnknownTask = errors.New("unknown task")
)

// ConfigError describes a configuration problem.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error (%s): %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// TaskError ties a per-task failure to the task and the stage it failed in.
type TaskError struct {
	Task  string
	Stage Stage
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q (%s): %v", e.Task, e.Stage, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// RemoteOperationError wraps a store failure that survived retries.
type RemoteOperationError struct {
	Operation string
	Target    string
	Err       error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Target, e.Err)
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}

func (e *RemoteOperationError) Is(target error) bool {
	return target == ErrRemoteOperation
}
