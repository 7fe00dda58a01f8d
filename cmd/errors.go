package cmd

import "fmt"

const (
	ExitOK       = 0
	ExitArg      = 2
	ExitInput    = 3
	ExitConfig   = 4
	ExitInternal = 5
)

// ExitError carries the process exit code. Event, when set, is the error
// code emitted as a structured event for ndjson/json consumers.
type ExitError struct {
	Code  int
	Msg   string
	Event string
}

func (e *ExitError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Msg
}

func categoryForExit(code int) string {
	switch code {
	case ExitArg:
		return "arg"
	case ExitConfig:
		return "config"
	case ExitInput:
		return "input"
	default:
		return "runtime"
	}
}
