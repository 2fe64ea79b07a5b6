package completion

import (
	"github.com/woxQAQ/agent-bridge/internal/textcodec"
	"github.com/woxQAQ/agent-bridge/pkg/protocol"
)

// ItemID identifies a completion item within the agent.
type ItemID string

// Item is one proposed replacement. InsertText and Range may be narrowed by
// later refinement stages; the filter text is fixed when the item is built.
type Item struct {
	ID         ItemID
	InsertText string
	Range      protocol.Range
	Command    *protocol.Command

	filterText string
}

// NewItem creates a completion item.
func NewItem(id ItemID, insertText, filterText string, r protocol.Range, cmd *protocol.Command) *Item {
	return &Item{
		ID:         id,
		InsertText: insertText,
		Range:      r,
		Command:    cmd,
		filterText: filterText,
	}
}

// FilterText returns the text used for client-side matching.
func (i *Item) FilterText() string {
	return i.filterText
}

// Edit returns the item as a protocol text edit.
func (i *Item) Edit() protocol.TextEdit {
	return protocol.TextEdit{Range: i.Range, NewText: i.InsertText}
}

// Offsets maps the item's range back onto doc.
func (i *Item) Offsets(doc textcodec.Lines) (start, end int) {
	return textcodec.RangeToOffsets(doc, i.Range)
}

// Apply replaces the item's range in doc with its insert text. It returns the
// new document and the offset just after the inserted text.
func (i *Item) Apply(doc *textcodec.Document) (*textcodec.Document, int, error) {
	start, end := i.Offsets(doc)

	next, err := doc.Replace(start, end, i.InsertText)
	if err != nil {
		return nil, 0, err
	}
	return next, start + textcodec.Len16(i.InsertText), nil
}

func (i *Item) wire() protocol.CompletionItem {
	return protocol.CompletionItem{
		ID:         string(i.ID),
		InsertText: i.InsertText,
		FilterText: i.filterText,
		Range:      i.Range,
		Command:    i.Command,
	}
}

func itemFromWire(w protocol.CompletionItem) *Item {
	return NewItem(ItemID(w.ID), w.InsertText, w.FilterText, w.Range, w.Command)
}
