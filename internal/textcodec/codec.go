// Package textcodec converts between editor buffer offsets and agent
// line/character positions. Both sides count UTF-16 code units.
package textcodec

import (
	"strings"

	"github.com/woxQAQ/agent-bridge/pkg/protocol"
)

// OffsetToPosition converts a buffer offset to a position.
// Offsets outside [0, buf.Length()] return *OffsetOutOfRangeError.
func OffsetToPosition(buf Buffer, offset int) (protocol.Position, error) {
	if offset < 0 || offset > buf.Length() {
		return protocol.Position{}, &OffsetOutOfRangeError{Offset: offset, Length: buf.Length()}
	}

	line := buf.LineIndexOf(offset)
	return protocol.Position{
		Line:      line,
		Character: offset - buf.LineStartOffset(line),
	}, nil
}

// ClampOffset limits offset to [0, buf.Length()].
func ClampOffset(buf Buffer, offset int) int {
	if offset < 0 {
		return 0
	}
	if n := buf.Length(); offset > n {
		return n
	}
	return offset
}

// OffsetsToRange converts an offset pair to a range. Both offsets are clamped
// to the buffer. A start after the end returns *InvertedRangeError.
//
// When both offsets sit on the same line, the end character is measured from
// the start line's offset so the two characters share one reference.
func OffsetsToRange(buf Buffer, startOffset, endOffset int) (protocol.Range, error) {
	if startOffset > endOffset {
		return protocol.Range{}, &InvertedRangeError{Start: startOffset, End: endOffset}
	}
	startOffset = ClampOffset(buf, startOffset)
	endOffset = ClampOffset(buf, endOffset)

	startLine := buf.LineIndexOf(startOffset)
	startLineOffset := buf.LineStartOffset(startLine)

	endLine := buf.LineIndexOf(endOffset)
	endLineOffset := startLineOffset
	if endLine != startLine {
		endLineOffset = buf.LineStartOffset(endLine)
	}

	return protocol.Range{
		Start: protocol.Position{Line: startLine, Character: startOffset - startLineOffset},
		End:   protocol.Position{Line: endLine, Character: endOffset - endLineOffset},
	}, nil
}

// PositionToOffset converts an agent position back to a buffer offset.
// The line is clamped to the buffer and the character to the line length,
// so positions past the end of a line land on its end.
func PositionToOffset(buf Lines, pos protocol.Position) int {
	line := pos.Line
	if last := buf.LineCount() - 1; line > last {
		line = last
	}
	if line < 0 {
		line = 0
	}

	start := buf.LineStartOffset(line)
	character := pos.Character
	if lineLen := buf.LineEndOffset(line) - start; character > lineLen {
		character = lineLen
	}
	if character < 0 {
		character = 0
	}
	return start + character
}

// RangeToOffsets converts an agent range back to a pair of offsets.
func RangeToOffsets(buf Lines, r protocol.Range) (start, end int) {
	return PositionToOffset(buf, r.Start), PositionToOffset(buf, r.End)
}

// ChangeForReplace describes replacing oldFragment at offset with newFragment.
// The range is in pre-edit coordinates, derived from oldFragment itself, so buf
// may hold either the pre-edit or post-edit text.
func ChangeForReplace(buf Buffer, offset int, oldFragment, newFragment string) (protocol.ContentChangeEvent, error) {
	start, err := OffsetToPosition(buf, offset)
	if err != nil {
		return protocol.ContentChangeEvent{}, err
	}

	end := protocol.Position{Line: start.Line + strings.Count(oldFragment, "\n")}
	if end.Line == start.Line {
		end.Character = start.Character + Len16(oldFragment)
	} else {
		end.Character = lastLineLen16(oldFragment)
	}

	return protocol.ContentChangeEvent{
		Range: protocol.Range{Start: start, End: end},
		Text:  newFragment,
	}, nil
}
