// Package docsync computes the incremental document changes sent to the
// agent between two snapshots of a buffer.
package docsync

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/woxQAQ/agent-bridge/internal/textcodec"
	"github.com/woxQAQ/agent-bridge/pkg/protocol"
)

type edit struct {
	start, end int // UTF-16 offsets into the old snapshot
	text       strings.Builder
}

// Diff returns the changes that turn before into after. Ranges are in
// before's coordinates and ordered from the end of the document backward,
// so applying them one after another never shifts a pending range.
func Diff(before, after *textcodec.Document) ([]protocol.ContentChangeEvent, error) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before.Text(), after.Text(), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var edits []*edit
	var cur *edit
	offset := 0

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			cur = nil
			offset += textcodec.Len16(d.Text)
		case diffmatchpatch.DiffDelete:
			if cur == nil {
				cur = &edit{start: offset, end: offset}
				edits = append(edits, cur)
			}
			offset += textcodec.Len16(d.Text)
			cur.end = offset
		case diffmatchpatch.DiffInsert:
			if cur == nil {
				cur = &edit{start: offset, end: offset}
				edits = append(edits, cur)
			}
			cur.text.WriteString(d.Text)
		}
	}

	changes := make([]protocol.ContentChangeEvent, 0, len(edits))
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		start, end, text := e.start, e.end, e.text.String()

		// Positions cannot address the point between "\r" and "\n".
		if splitsCRLF(before, start) {
			start--
			text = "\r" + text
		}
		if splitsCRLF(before, end) {
			end++
			text += "\n"
		}

		r, err := textcodec.OffsetsToRange(before, start, end)
		if err != nil {
			return nil, err
		}
		changes = append(changes, protocol.ContentChangeEvent{Range: r, Text: text})
	}

	return changes, nil
}

func splitsCRLF(doc *textcodec.Document, offset int) bool {
	if offset <= 0 || offset >= doc.Length() {
		return false
	}
	pair, err := doc.Slice(offset-1, offset+1)
	return err == nil && pair == "\r\n"
}

// Apply applies changes in order, as the agent would.
func Apply(doc *textcodec.Document, changes []protocol.ContentChangeEvent) (*textcodec.Document, error) {
	for _, change := range changes {
		start, end := textcodec.RangeToOffsets(doc, change.Range)
		next, err := doc.Replace(start, end, change.Text)
		if err != nil {
			return nil, err
		}
		doc = next
	}
	return doc, nil
}
