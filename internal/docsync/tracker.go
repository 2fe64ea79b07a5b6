package docsync

import (
	"sync"

	"go.uber.org/zap"

	"github.com/woxQAQ/agent-bridge/internal/config"
	"github.com/woxQAQ/agent-bridge/internal/textcodec"
	"github.com/woxQAQ/agent-bridge/pkg/protocol"
)

// Tracker remembers the last snapshot sent to the agent for each URI and
// turns new snapshots into document notifications.
type Tracker struct {
	mu        sync.Mutex
	snapshots map[string]*textcodec.Document
	cfg       config.SyncConfig
	logger    *zap.Logger
}

// NewTracker creates a tracker. With cfg.FullDocument every update carries the
// whole content instead of incremental changes. With cfg.SendTestingParams
// every notification carries the editor's full document state.
func NewTracker(cfg config.SyncConfig, logger *zap.Logger) *Tracker {
	return &Tracker{
		snapshots: make(map[string]*textcodec.Document),
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "docsync")),
	}
}

// Update records doc as the latest snapshot of uri and returns the
// notification for the agent. The first update of a URI always sends the
// full content.
func (t *Tracker) Update(uri string, doc *textcodec.Document, selection *protocol.Range) (protocol.TextDocument, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	td := protocol.TextDocument{URI: uri, Selection: selection}

	prev, known := t.snapshots[uri]
	if !known || t.cfg.FullDocument {
		content := doc.Text()
		td.Content = &content
	} else {
		changes, err := Diff(prev, doc)
		if err != nil {
			return protocol.TextDocument{}, err
		}
		td.ContentChanges = changes
	}
	td.Testing = t.testing(uri, doc, selection, nil)

	t.snapshots[uri] = doc
	t.logUpdate(td)

	return td, nil
}

// Edit records doc, the buffer after change was applied, as the latest
// snapshot of uri. The notification carries change as is unless the URI is
// new or full sync is on.
func (t *Tracker) Edit(uri string, doc *textcodec.Document, change protocol.ContentChangeEvent, selection *protocol.Range) protocol.TextDocument {
	t.mu.Lock()
	defer t.mu.Unlock()

	td := protocol.TextDocument{URI: uri, Selection: selection}

	if _, known := t.snapshots[uri]; !known || t.cfg.FullDocument {
		content := doc.Text()
		td.Content = &content
	} else {
		td.ContentChanges = []protocol.ContentChangeEvent{change}
	}
	td.Testing = t.testing(uri, doc, selection, nil)

	t.snapshots[uri] = doc
	t.logUpdate(td)

	return td
}

// Focus records doc as the latest snapshot of uri and returns a notification
// with the full content, the selection and the visible range.
func (t *Tracker) Focus(uri string, doc *textcodec.Document, selection, visible *protocol.Range) protocol.TextDocument {
	t.mu.Lock()
	defer t.mu.Unlock()

	content := doc.Text()
	td := protocol.TextDocument{
		URI:          uri,
		Content:      &content,
		Selection:    selection,
		VisibleRange: visible,
		Testing:      t.testing(uri, doc, selection, nil),
	}

	t.snapshots[uri] = doc
	t.logUpdate(td)

	return td
}

// Select returns a selection-only notification. The snapshot is unchanged.
func (t *Tracker) Select(uri string, doc *textcodec.Document, selection protocol.Range) (protocol.TextDocument, error) {
	td := protocol.TextDocument{URI: uri, Selection: &selection}
	if !t.cfg.SendTestingParams {
		return td, nil
	}

	start, end := textcodec.RangeToOffsets(doc, selection)
	selected, err := doc.Slice(start, end)
	if err != nil {
		return protocol.TextDocument{}, err
	}
	td.Testing = t.testing(uri, doc, &selection, &selected)
	return td, nil
}

// Snapshot returns the last document recorded for uri.
func (t *Tracker) Snapshot(uri string) (*textcodec.Document, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok := t.snapshots[uri]
	return doc, ok
}

// Close forgets uri.
func (t *Tracker) Close(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.snapshots, uri)
}

func (t *Tracker) testing(uri string, doc *textcodec.Document, selection *protocol.Range, selectedText *string) *protocol.TestingParams {
	if !t.cfg.SendTestingParams {
		return nil
	}
	content := doc.Text()
	return &protocol.TestingParams{
		SelectedText: selectedText,
		SourceOfTruthDocument: &protocol.TextDocument{
			URI:       uri,
			Content:   &content,
			Selection: selection,
		},
	}
}

func (t *Tracker) logUpdate(td protocol.TextDocument) {
	t.logger.Debug("Document updated",
		zap.String("uri", td.URI),
		zap.Bool("full", td.Content != nil),
		zap.Int("changes", len(td.ContentChanges)),
	)
}
