package textcodec

import (
	"sort"
	"strings"
	"unicode/utf16"
)

// Buffer is the part of an editor buffer the codec needs.
// Offsets, lines and characters are zero-based and count UTF-16 code units.
type Buffer interface {
	// LineIndexOf returns the line containing offset.
	LineIndexOf(offset int) int

	// LineStartOffset returns the offset of the first character of line.
	LineStartOffset(line int) int

	// Length returns the buffer length.
	Length() int
}

// Lines extends Buffer with the queries needed to map agent positions back
// to offsets.
type Lines interface {
	Buffer

	// LineEndOffset returns the offset just before the line's "\n" or
	// "\r\n" terminator, or Length() for the last line.
	LineEndOffset(line int) int

	// LineCount returns the number of newlines plus one.
	LineCount() int
}

// Document is an immutable text buffer addressed in UTF-16 code units.
type Document struct {
	units       []uint16
	lineOffsets []int // code-unit offset of the first char of each line
}

// NewDocument creates a document for the given text.
func NewDocument(text string) *Document {
	return newDocumentFromUnits(utf16.Encode([]rune(text)))
}

func newDocumentFromUnits(units []uint16) *Document {
	d := &Document{
		units:       units,
		lineOffsets: []int{0},
	}
	for i, u := range units {
		if u == '\n' {
			d.lineOffsets = append(d.lineOffsets, i+1)
		}
	}
	return d
}

// Length returns the number of code units in the document.
func (d *Document) Length() int {
	return len(d.units)
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return len(d.lineOffsets)
}

// LineIndexOf returns the line containing offset. The offset of a newline
// belongs to the line it ends. Out-of-range offsets resolve to the first or
// last line.
func (d *Document) LineIndexOf(offset int) int {
	if offset <= 0 {
		return 0
	}
	return sort.Search(len(d.lineOffsets)-1, func(i int) bool {
		return offset < d.lineOffsets[i+1]
	})
}

// LineStartOffset returns the offset of the first character of line.
func (d *Document) LineStartOffset(line int) int {
	return d.lineOffsets[d.clampLine(line)]
}

// LineEndOffset returns the end of line, excluding its "\n" or "\r\n".
func (d *Document) LineEndOffset(line int) int {
	line = d.clampLine(line)
	if line+1 >= len(d.lineOffsets) {
		return len(d.units)
	}
	end := d.lineOffsets[line+1] - 1
	if end > d.lineOffsets[line] && d.units[end-1] == '\r' {
		end--
	}
	return end
}

func (d *Document) clampLine(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(d.lineOffsets) {
		return len(d.lineOffsets) - 1
	}
	return line
}

// Text returns the document contents.
func (d *Document) Text() string {
	return string(utf16.Decode(d.units))
}

// Slice returns the text between two offsets.
func (d *Document) Slice(start, end int) (string, error) {
	if err := d.checkSpan(start, end); err != nil {
		return "", err
	}
	return string(utf16.Decode(d.units[start:end])), nil
}

// Replace returns a new document with [start, end) replaced by text.
func (d *Document) Replace(start, end int, text string) (*Document, error) {
	if err := d.checkSpan(start, end); err != nil {
		return nil, err
	}

	inserted := utf16.Encode([]rune(text))
	units := make([]uint16, 0, len(d.units)-(end-start)+len(inserted))
	units = append(units, d.units[:start]...)
	units = append(units, inserted...)
	units = append(units, d.units[end:]...)

	return newDocumentFromUnits(units), nil
}

func (d *Document) checkSpan(start, end int) error {
	if start < 0 || start > len(d.units) {
		return &OffsetOutOfRangeError{Offset: start, Length: len(d.units)}
	}
	if end < 0 || end > len(d.units) {
		return &OffsetOutOfRangeError{Offset: end, Length: len(d.units)}
	}
	if start > end {
		return &InvertedRangeError{Start: start, End: end}
	}
	return nil
}

// Len16 returns the number of UTF-16 code units needed to encode s.
func Len16(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// lastLineLen16 returns the code units after the last newline in s.
func lastLineLen16(s string) int {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return Len16(s[i+1:])
	}
	return Len16(s)
}
