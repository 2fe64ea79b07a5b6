package handler

import (
	"sync"

	"go.uber.org/zap"
)

// Registry maps each editor to at most one completion handler.
// Safe for concurrent use.
type Registry struct {
	sync.RWMutex
	handlers map[EditorID]Handler
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[EditorID]Handler),
		logger:   logger.With(zap.String("component", "handler-registry")),
	}
}

// Get returns the handler registered for id, if any.
func (r *Registry) Get(id EditorID) (Handler, bool) {
	r.RLock()
	defer r.RUnlock()

	h, ok := r.handlers[id]
	return h, ok
}

// Set registers h for id, replacing any previous handler, which is returned.
// Setting a nil handler clears id.
func (r *Registry) Set(id EditorID, h Handler) (Handler, bool) {
	r.Lock()
	defer r.Unlock()

	prev, replaced := r.handlers[id]
	if h == nil {
		delete(r.handlers, id)
		r.logger.Debug("Handler cleared", zap.String("editor", string(id)))
		return prev, replaced
	}
	r.handlers[id] = h

	r.logger.Debug("Handler registered",
		zap.String("editor", string(id)),
		zap.Bool("replaced", replaced),
	)

	return prev, replaced
}

// Clear removes the handler for id. It reports whether one was registered.
func (r *Registry) Clear(id EditorID) bool {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.handlers[id]; !ok {
		return false
	}
	delete(r.handlers, id)

	r.logger.Debug("Handler cleared", zap.String("editor", string(id)))
	return true
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.handlers)
}
