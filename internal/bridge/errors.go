package bridge

import (
	"fmt"

	"github.com/woxQAQ/agent-bridge/internal/handler"
)

// UnknownEditorError occurs when an editor ID was never opened or is closed.
type UnknownEditorError struct {
	Editor handler.EditorID
}

func (e *UnknownEditorError) Error() string {
	return fmt.Sprintf("editor '%s' is not open", e.Editor)
}

// NoHandlerError occurs when a result arrives for an editor without a handler.
type NoHandlerError struct {
	Editor handler.EditorID
}

func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("no completion handler registered for editor '%s'", e.Editor)
}

// NilHandlerError occurs when a nil handler is registered for an editor.
type NilHandlerError struct {
	Editor handler.EditorID
}

func (e *NilHandlerError) Error() string {
	return fmt.Sprintf("cannot register a nil completion handler for editor '%s'", e.Editor)
}

// HandlerError wraps a failure returned by a completion handler.
type HandlerError struct {
	Editor handler.EditorID
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("completion handler for editor '%s' failed: %v", e.Editor, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
