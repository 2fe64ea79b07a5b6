// Package handler tracks the active completion handler of each open editor.
package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/woxQAQ/agent-bridge/internal/completion"
)

// EditorID identifies an open editor. It is a value, so holding it never
// keeps the editor itself alive.
type EditorID string

// NewEditorID returns a fresh random editor ID.
func NewEditorID() EditorID {
	return EditorID(uuid.NewString())
}

// Handler consumes completion results for one editor.
type Handler interface {
	HandleResult(ctx context.Context, result *completion.Result) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, result *completion.Result) error

// HandleResult calls f.
func (f HandlerFunc) HandleResult(ctx context.Context, result *completion.Result) error {
	return f(ctx, result)
}
