// Package bridge connects editor buffers to the completion agent: it turns
// editor offsets and paths into agent requests and routes agent results back
// to the editor's completion handler.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/woxQAQ/agent-bridge/internal/completion"
	"github.com/woxQAQ/agent-bridge/internal/config"
	"github.com/woxQAQ/agent-bridge/internal/docsync"
	"github.com/woxQAQ/agent-bridge/internal/handler"
	"github.com/woxQAQ/agent-bridge/internal/textcodec"
	"github.com/woxQAQ/agent-bridge/internal/uri"
	"github.com/woxQAQ/agent-bridge/pkg/protocol"
)

type Bridge struct {
	cfg      *config.Config
	logger   *zap.Logger
	handlers *handler.Registry
	aliases  *uri.AliasMap
	docs     *docsync.Tracker

	mu      sync.RWMutex
	editors map[handler.EditorID]string // editor -> agent URI
}

func New(cfg *config.Config, logger *zap.Logger) (*Bridge, error) {
	var seed map[string]string
	if cfg.URI.AliasesFile != "" {
		aliases, err := uri.LoadAliases(cfg.URI.AliasesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize URI aliases: %w", err)
		}
		seed = aliases
	}

	b := &Bridge{
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "bridge")),
		handlers: handler.NewRegistry(logger),
		aliases:  uri.NewAliasMap(seed),
		docs:     docsync.NewTracker(cfg.Sync, logger),
		editors:  make(map[handler.EditorID]string),
	}

	logger.Info("Bridge initialized",
		zap.Int("uri_aliases", len(seed)),
		zap.Bool("full_document_sync", cfg.Sync.FullDocument),
		zap.Bool("testing_params", cfg.Sync.SendTestingParams),
	)

	return b, nil
}

// DocumentURI returns the URI the agent knows path by.
func (b *Bridge) DocumentURI(path string) string {
	return b.aliases.Resolve(uri.FromPath(path))
}

// RememberAgentURI records that the agent opened the file at path as agentURI.
func (b *Bridge) RememberAgentURI(path, agentURI string) {
	b.aliases.Remember(uri.FromPath(path), agentURI)
}

// Open starts tracking an editor showing path and returns the didOpen
// notification for the agent.
func (b *Bridge) Open(path string, doc *textcodec.Document) (handler.EditorID, protocol.TextDocument, error) {
	id := handler.NewEditorID()
	docURI := b.DocumentURI(path)

	td, err := b.docs.Update(docURI, doc, nil)
	if err != nil {
		return "", protocol.TextDocument{}, err
	}

	b.mu.Lock()
	b.editors[id] = docURI
	b.mu.Unlock()

	b.logger.Info("Editor opened",
		zap.String("editor", string(id)),
		zap.String("uri", docURI),
	)

	return id, td, nil
}

// Changed returns the didChange notification for a new buffer snapshot with
// the caret at the given offset.
func (b *Bridge) Changed(id handler.EditorID, doc *textcodec.Document, caret int) (protocol.TextDocument, error) {
	docURI, err := b.editorURI(id)
	if err != nil {
		return protocol.TextDocument{}, err
	}

	selection, err := textcodec.OffsetsToRange(doc, caret, caret)
	if err != nil {
		return protocol.TextDocument{}, err
	}

	return b.docs.Update(docURI, doc, &selection)
}

// Edited returns the didChange notification for a single editor edit that
// replaced oldFragment at offset with newFragment. doc is the buffer after the
// edit.
func (b *Bridge) Edited(id handler.EditorID, doc *textcodec.Document, offset int, oldFragment, newFragment string, caret int) (protocol.TextDocument, error) {
	docURI, err := b.editorURI(id)
	if err != nil {
		return protocol.TextDocument{}, err
	}

	change, err := textcodec.ChangeForReplace(doc, offset, oldFragment, newFragment)
	if err != nil {
		return protocol.TextDocument{}, err
	}

	selection, err := textcodec.OffsetsToRange(doc, caret, caret)
	if err != nil {
		return protocol.TextDocument{}, err
	}

	return b.docs.Edit(docURI, doc, change, &selection), nil
}

// Selected returns the notification for a new selection between two offsets.
func (b *Bridge) Selected(id handler.EditorID, doc *textcodec.Document, start, end int) (protocol.TextDocument, error) {
	docURI, err := b.editorURI(id)
	if err != nil {
		return protocol.TextDocument{}, err
	}

	selection, err := textcodec.OffsetsToRange(doc, start, end)
	if err != nil {
		return protocol.TextDocument{}, err
	}

	return b.docs.Select(docURI, doc, selection)
}

// Focused returns the didFocus notification for an editor whose viewport
// shows the offsets [visibleStart, visibleEnd].
func (b *Bridge) Focused(id handler.EditorID, doc *textcodec.Document, caret, visibleStart, visibleEnd int) (protocol.TextDocument, error) {
	docURI, err := b.editorURI(id)
	if err != nil {
		return protocol.TextDocument{}, err
	}

	selection, err := textcodec.OffsetsToRange(doc, caret, caret)
	if err != nil {
		return protocol.TextDocument{}, err
	}
	visible, err := textcodec.OffsetsToRange(doc, visibleStart, visibleEnd)
	if err != nil {
		return protocol.TextDocument{}, err
	}

	return b.docs.Focus(docURI, doc, &selection, &visible), nil
}

// Request builds an autocomplete request for the caret offset.
func (b *Bridge) Request(id handler.EditorID, doc *textcodec.Document, caret int, trigger protocol.TriggerKind) (protocol.AutocompleteParams, error) {
	docURI, err := b.editorURI(id)
	if err != nil {
		return protocol.AutocompleteParams{}, err
	}

	pos, err := textcodec.OffsetToPosition(doc, caret)
	if err != nil {
		return protocol.AutocompleteParams{}, err
	}

	return protocol.AutocompleteParams{
		URI:         docURI,
		Position:    pos,
		TriggerKind: trigger,
	}, nil
}

// Register installs h as the completion handler of editor id, replacing any
// previous one.
func (b *Bridge) Register(id handler.EditorID, h handler.Handler) error {
	if _, err := b.editorURI(id); err != nil {
		return err
	}
	if h == nil {
		return &NilHandlerError{Editor: id}
	}
	b.handlers.Set(id, h)
	return nil
}

// Handler returns the completion handler of editor id.
func (b *Bridge) Handler(id handler.EditorID) (handler.Handler, bool) {
	return b.handlers.Get(id)
}

// Deliver decodes an agent payload and hands it to the editor's handler.
func (b *Bridge) Deliver(ctx context.Context, id handler.EditorID, payload []byte) (*completion.Result, error) {
	result, err := completion.Decode(payload)
	if err != nil {
		return nil, err
	}

	h, ok := b.handlers.Get(id)
	if !ok {
		b.logger.Debug("Dropping completion result without handler",
			zap.String("editor", string(id)),
			zap.String("log_id", string(result.LogID())),
		)
		return result, &NoHandlerError{Editor: id}
	}

	if err := h.HandleResult(ctx, result); err != nil {
		return result, &HandlerError{Editor: id, Err: err}
	}

	b.logger.Debug("Completion result delivered",
		zap.String("editor", string(id)),
		zap.String("log_id", string(result.LogID())),
		zap.Int("items", result.Len()),
	)

	return result, nil
}

// Accept applies the item at index to doc and returns the new document with
// the caret offset after the inserted text.
func (b *Bridge) Accept(doc *textcodec.Document, result *completion.Result, index int) (*textcodec.Document, int, error) {
	item, err := result.Item(index)
	if err != nil {
		return nil, 0, err
	}

	next, caret, err := item.Apply(doc)
	if err != nil {
		return nil, 0, err
	}

	b.logger.Info("Completion accepted",
		zap.String("log_id", string(result.LogID())),
		zap.String("item", string(item.ID)),
	)

	return next, caret, nil
}

// Close stops tracking editor id and drops its handler.
func (b *Bridge) Close(id handler.EditorID) {
	b.mu.Lock()
	docURI, ok := b.editors[id]
	delete(b.editors, id)
	stillOpen := false
	for _, other := range b.editors {
		if other == docURI {
			stillOpen = true
			break
		}
	}
	b.mu.Unlock()

	if !ok {
		return
	}

	b.handlers.Clear(id)
	if !stillOpen {
		b.docs.Close(docURI)
	}

	b.logger.Info("Editor closed", zap.String("editor", string(id)))
}

func (b *Bridge) editorURI(id handler.EditorID) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	docURI, ok := b.editors[id]
	if !ok {
		return "", &UnknownEditorError{Editor: id}
	}
	return docURI, nil
}
