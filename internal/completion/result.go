// Package completion models the completion results returned by the agent.
package completion

import (
	"encoding/json"

	"github.com/woxQAQ/agent-bridge/pkg/protocol"
)

// LogID correlates a result with later acceptance and telemetry events.
// It is opaque and must not be parsed.
type LogID string

// Result is a set of completion items for one request.
type Result struct {
	logID LogID

	// Items are ordered by the agent's preference.
	Items []*Item

	// LegacyEvent is only populated when decoding payloads from older agents.
	//
	// Deprecated: use LogID.
	LegacyEvent *protocol.CompletionEvent
}

// NewResult creates a result. The log ID cannot be changed afterwards.
func NewResult(logID LogID, items []*Item) *Result {
	return &Result{logID: logID, Items: items}
}

// LogID returns the tracking token assigned at construction.
func (r *Result) LogID() LogID {
	return r.logID
}

// Len returns the number of items.
func (r *Result) Len() int {
	return len(r.Items)
}

// Item returns the item at index.
func (r *Result) Item(index int) (*Item, error) {
	if index < 0 || index >= len(r.Items) {
		return nil, &ItemIndexError{Index: index, Count: len(r.Items)}
	}
	return r.Items[index], nil
}

// Retain keeps the items for which keep returns true, preserving order.
func (r *Result) Retain(keep func(*Item) bool) {
	kept := r.Items[:0]
	for _, item := range r.Items {
		if keep(item) {
			kept = append(kept, item)
		}
	}
	// Drop references held past the new length.
	for i := len(kept); i < len(r.Items); i++ {
		r.Items[i] = nil
	}
	r.Items = kept
}

// Dedupe removes items whose insert text and range repeat an earlier item.
func (r *Result) Dedupe() {
	type key struct {
		text string
		rng  protocol.Range
	}
	seen := make(map[key]struct{}, len(r.Items))
	r.Retain(func(item *Item) bool {
		k := key{item.InsertText, item.Range}
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
}

// Decode parses an agent completion payload.
func Decode(data []byte) (*Result, error) {
	r := &Result{}
	if err := r.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return r, nil
}

// UnmarshalJSON decodes an agent payload. A result that already carries a
// log ID rejects a payload with a different one.
func (r *Result) UnmarshalJSON(data []byte) error {
	var list protocol.CompletionList
	if err := json.Unmarshal(data, &list); err != nil {
		return &DecodeError{Err: err}
	}

	if list.LogID == "" {
		return &MissingLogIDError{}
	}
	logID := LogID(list.LogID)
	if r.logID != "" && r.logID != logID {
		return &LogIDReassignedError{Current: r.logID, Attempted: logID}
	}

	items := make([]*Item, 0, len(list.Items))
	for _, w := range list.Items {
		items = append(items, itemFromWire(w))
	}

	r.logID = logID
	r.Items = items
	r.LegacyEvent = list.CompletionEvent
	return nil
}

// MarshalJSON encodes the result in the agent's wire shape.
func (r *Result) MarshalJSON() ([]byte, error) {
	list := protocol.CompletionList{
		LogID: string(r.logID),
		Items: make([]protocol.CompletionItem, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		list.Items = append(list.Items, item.wire())
	}
	return json.Marshal(list)
}
