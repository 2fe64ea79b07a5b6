package completion

import (
	"fmt"
)

// MissingLogIDError occurs when an agent result carries no log ID.
type MissingLogIDError struct{}

func (e *MissingLogIDError) Error() string {
	return "completion result has no logId"
}

// LogIDReassignedError occurs when decoding into a result that already has a log ID.
type LogIDReassignedError struct {
	Current   LogID
	Attempted LogID
}

func (e *LogIDReassignedError) Error() string {
	return fmt.Sprintf("completion result log ID is '%s', cannot reassign to '%s'", e.Current, e.Attempted)
}

// ItemIndexError occurs when an item index is outside the result's items.
type ItemIndexError struct {
	Index int
	Count int
}

func (e *ItemIndexError) Error() string {
	return fmt.Sprintf("completion item %d out of range (have %d items)", e.Index, e.Count)
}

// DecodeError occurs when an agent payload is not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode completion result: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
