package schedule

import "fmt"

// InvalidPatternError reports a malformed rotation pattern: an empty or
// non-binary custom sequence, or an unknown preset type. Scheduling
// conflicts are never reported as errors; errors are reserved for input
// that makes computation impossible.
type InvalidPatternError struct {
	Reason string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid rotation pattern: %s", e.Reason)
}

// InvalidRangeError reports a date range whose end precedes its start.
type InvalidRangeError struct {
	From string
	To   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: %s is before %s", e.To, e.From)
}

// InvalidTimeRangeError reports shift times that cannot be parsed as
// wall-clock HH:MM values, or dates that cannot be parsed as YYYY-MM-DD.
type InvalidTimeRangeError struct {
	Value string
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("invalid time value: %q", e.Value)
}
