package protocol

// Wire types exchanged with the completion agent.
// Positions count UTF-16 code units, lines are zero-based.

// Position represents a position in a text document
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Compare orders positions by line, then character.
// It returns -1, 0 or +1.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Character < other.Character:
		return -1
	case p.Character > other.Character:
		return 1
	}
	return 0
}

// IsZero reports whether p is the first position of a document.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Character == 0
}

// Range represents a half-open range in a text document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Valid reports whether Start is not ordered after End.
func (r Range) Valid() bool {
	return r.Start.Compare(r.End) <= 0
}

// IsEmpty reports whether r is an insertion point.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsZero reports whether the agent sent all zeroes for the range.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// TextEdit represents a text edit
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// Command is an editor command attached to a completion item.
type Command struct {
	Title     string `json:"title"`
	Command   string `json:"command"`
	Tooltip   string `json:"tooltip,omitempty"`
	Arguments []any  `json:"arguments,omitempty"`
}

// CompletionItem is a single proposed replacement as sent by the agent.
type CompletionItem struct {
	ID         string   `json:"id,omitempty"`
	InsertText string   `json:"insertText"`
	FilterText string   `json:"filterText,omitempty"`
	Range      Range    `json:"range"`
	Command    *Command `json:"command,omitempty"`
}

// CompletionList is the agent's response to an autocomplete request.
type CompletionList struct {
	LogID string           `json:"logId"`
	Items []CompletionItem `json:"items"`

	// Deprecated: use LogID.
	CompletionEvent *CompletionEvent `json:"completionEvent,omitempty"`
}

// CompletionEvent is the bookkeeping payload older agents attached to results.
type CompletionEvent struct {
	ID          string               `json:"id"`
	StartedAt   int64                `json:"startedAt"`
	SuggestedAt *int64               `json:"suggestedAt,omitempty"`
	AcceptedAt  *int64               `json:"acceptedAt,omitempty"`
	Items       []CompletionItemInfo `json:"items,omitempty"`
}

// CompletionItemInfo summarizes one item inside a CompletionEvent.
type CompletionItemInfo struct {
	LineCount int `json:"lineCount"`
	CharCount int `json:"charCount"`
}

// TriggerKind says why an autocomplete request was issued.
type TriggerKind string

const (
	TriggerKindAutomatic TriggerKind = "Automatic"
	TriggerKindInvoke    TriggerKind = "Invoke"
)

// SelectedCompletionInfo describes the item highlighted in the editor's own popup.
type SelectedCompletionInfo struct {
	Text  string `json:"text"`
	Range Range  `json:"range"`
}

// AutocompleteParams is the request sent to the agent.
type AutocompleteParams struct {
	URI                    string                  `json:"uri"`
	Position               Position                `json:"position"`
	TriggerKind            TriggerKind             `json:"triggerKind,omitempty"`
	SelectedCompletionInfo *SelectedCompletionInfo `json:"selectedCompletionInfo,omitempty"`
}

// ContentChangeEvent is an incremental document change in pre-edit coordinates.
type ContentChangeEvent struct {
	Range Range  `json:"range"`
	Text  string `json:"text"`
}

// TextDocument identifies a document and optionally carries its state.
type TextDocument struct {
	URI            string               `json:"uri"`
	Content        *string              `json:"content,omitempty"`
	Selection      *Range               `json:"selection,omitempty"`
	VisibleRange   *Range               `json:"visibleRange,omitempty"`
	ContentChanges []ContentChangeEvent `json:"contentChanges,omitempty"`
	Testing        *TestingParams       `json:"testing,omitempty"`
}

// TestingParams carries the editor's view of a document so the agent can
// compare it with the state it rebuilt from notifications.
type TestingParams struct {
	SelectedText          *string       `json:"selectedText,omitempty"`
	SourceOfTruthDocument *TextDocument `json:"sourceOfTruthDocument,omitempty"`
}
