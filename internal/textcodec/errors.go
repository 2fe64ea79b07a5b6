package textcodec

import (
	"fmt"
)

// OffsetOutOfRangeError occurs when an offset falls outside [0, length].
type OffsetOutOfRangeError struct {
	Offset int
	Length int
}

func (e *OffsetOutOfRangeError) Error() string {
	return fmt.Sprintf("offset %d out of range [0, %d]", e.Offset, e.Length)
}

// InvertedRangeError occurs when a range's start offset is after its end offset.
type InvertedRangeError struct {
	Start int
	End   int
}

func (e *InvertedRangeError) Error() string {
	return fmt.Sprintf("range start %d is after end %d", e.Start, e.End)
}
