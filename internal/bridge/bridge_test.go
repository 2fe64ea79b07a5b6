package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/woxQAQ/agent-bridge/internal/completion"
	"github.com/woxQAQ/agent-bridge/internal/config"
	"github.com/woxQAQ/agent-bridge/internal/handler"
	"github.com/woxQAQ/agent-bridge/internal/textcodec"
	"github.com/woxQAQ/agent-bridge/pkg/protocol"
)

const payload = `{
	"logId": "log-1",
	"items": [{
		"id": "i1",
		"insertText": "fmt.Println(\"hi\")",
		"filterText": "fmt",
		"range": {"start": {"line": 3, "character": 1}, "end": {"line": 3, "character": 4}}
	}]
}`

const source = "package main\n\nfunc main() {\n\tfmt\n}\n"

func newTestBridge(t *testing.T, cfg *config.Config) *Bridge {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{LogLevel: "debug"}
	}
	b, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return b
}

func TestBridge_OpenAndRequest(t *testing.T) {
	b := newTestBridge(t, nil)
	doc := textcodec.NewDocument(source)

	id, td, err := b.Open("/src/main.go", doc)
	require.NoError(t, err)
	assert.Equal(t, "file:///src/main.go", td.URI)
	require.NotNil(t, td.Content)
	assert.Equal(t, source, *td.Content)

	caret := doc.LineEndOffset(3)
	params, err := b.Request(id, doc, caret, protocol.TriggerKindAutomatic)
	require.NoError(t, err)
	assert.Equal(t, "file:///src/main.go", params.URI)
	assert.Equal(t, protocol.Position{Line: 3, Character: 4}, params.Position)
	assert.Equal(t, protocol.TriggerKindAutomatic, params.TriggerKind)

	_, err = b.Request(id, doc, doc.Length()+1, protocol.TriggerKindInvoke)
	var rangeErr *textcodec.OffsetOutOfRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestBridge_Changed(t *testing.T) {
	b := newTestBridge(t, nil)
	id, _, err := b.Open("/src/main.go", textcodec.NewDocument(source))
	require.NoError(t, err)

	edited := textcodec.NewDocument("package main\n\nfunc main() {\n\tfmt.\n}\n")
	td, err := b.Changed(id, edited, edited.LineEndOffset(3))
	require.NoError(t, err)
	assert.Nil(t, td.Content)
	require.Len(t, td.ContentChanges, 1)
	assert.Equal(t, ".", td.ContentChanges[0].Text)
	assert.Equal(t, protocol.Position{Line: 3, Character: 4}, td.ContentChanges[0].Range.Start)
	require.NotNil(t, td.Selection)
	assert.True(t, td.Selection.IsEmpty())
}

func TestBridge_Edited(t *testing.T) {
	b := newTestBridge(t, nil)
	id, _, err := b.Open("/src/main.go", textcodec.NewDocument(source))
	require.NoError(t, err)

	edited := textcodec.NewDocument("package main\n\nfunc main() {\n\tfmt.Println\n}\n")
	offset := edited.LineStartOffset(3) + 1
	caret := edited.LineEndOffset(3)
	td, err := b.Edited(id, edited, offset, "fmt", "fmt.Println", caret)
	require.NoError(t, err)

	assert.Nil(t, td.Content)
	require.Len(t, td.ContentChanges, 1)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 3, Character: 1},
		End:   protocol.Position{Line: 3, Character: 4},
	}, td.ContentChanges[0].Range)
	assert.Equal(t, "fmt.Println", td.ContentChanges[0].Text)
	require.NotNil(t, td.Selection)
	assert.Equal(t, protocol.Position{Line: 3, Character: 12}, td.Selection.Start)

	// A later snapshot diffs against the edited buffer.
	next := textcodec.NewDocument("package main\n\nfunc main() {\n\tfmt.Println()\n}\n")
	td, err = b.Changed(id, next, next.LineEndOffset(3))
	require.NoError(t, err)
	require.Len(t, td.ContentChanges, 1)
	assert.Equal(t, "()", td.ContentChanges[0].Text)

	_, err = b.Edited(id, edited, edited.Length()+1, "", "x", 0)
	var rangeErr *textcodec.OffsetOutOfRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestBridge_FocusedAndSelected(t *testing.T) {
	cfg := &config.Config{Sync: config.SyncConfig{SendTestingParams: true}}
	b := newTestBridge(t, cfg)
	doc := textcodec.NewDocument(source)
	id, td, err := b.Open("/src/main.go", doc)
	require.NoError(t, err)
	require.NotNil(t, td.Testing)

	td, err = b.Focused(id, doc, 0, doc.LineStartOffset(2), doc.Length())
	require.NoError(t, err)
	require.NotNil(t, td.Content)
	require.NotNil(t, td.VisibleRange)
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, td.VisibleRange.Start)
	assert.Equal(t, protocol.Position{Line: 5, Character: 0}, td.VisibleRange.End)

	start := doc.LineStartOffset(2)
	td, err = b.Selected(id, doc, start, start+4)
	require.NoError(t, err)
	assert.Nil(t, td.Content)
	require.NotNil(t, td.Testing)
	require.NotNil(t, td.Testing.SelectedText)
	assert.Equal(t, "func", *td.Testing.SelectedText)
}

func TestBridge_DeliverAndAccept(t *testing.T) {
	b := newTestBridge(t, nil)
	doc := textcodec.NewDocument(source)
	id, _, err := b.Open("/src/main.go", doc)
	require.NoError(t, err)

	var received *completion.Result
	require.NoError(t, b.Register(id, handler.HandlerFunc(func(ctx context.Context, r *completion.Result) error {
		received = r
		return nil
	})))

	result, err := b.Deliver(context.Background(), id, []byte(payload))
	require.NoError(t, err)
	require.Same(t, result, received)
	assert.Equal(t, completion.LogID("log-1"), result.LogID())

	next, caret, err := b.Accept(doc, result, 0)
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n", next.Text())

	pos, err := textcodec.OffsetToPosition(next, caret)
	require.NoError(t, err)
	assert.Equal(t, protocol.Position{Line: 3, Character: 18}, pos)

	_, _, err = b.Accept(doc, result, 5)
	var indexErr *completion.ItemIndexError
	assert.ErrorAs(t, err, &indexErr)
}

func TestBridge_DeliverWithoutHandler(t *testing.T) {
	b := newTestBridge(t, nil)
	id, _, err := b.Open("/src/main.go", textcodec.NewDocument(source))
	require.NoError(t, err)

	result, err := b.Deliver(context.Background(), id, []byte(payload))
	var noHandler *NoHandlerError
	require.ErrorAs(t, err, &noHandler)
	assert.Equal(t, id, noHandler.Editor)
	require.NotNil(t, result)
}

func TestBridge_RegisterNilHandler(t *testing.T) {
	b := newTestBridge(t, nil)
	id, _, err := b.Open("/src/main.go", textcodec.NewDocument(source))
	require.NoError(t, err)

	err = b.Register(id, nil)
	var nilHandler *NilHandlerError
	require.ErrorAs(t, err, &nilHandler)
	assert.Equal(t, id, nilHandler.Editor)

	_, ok := b.Handler(id)
	assert.False(t, ok)

	_, err = b.Deliver(context.Background(), id, []byte(payload))
	var noHandler *NoHandlerError
	assert.ErrorAs(t, err, &noHandler)
}

func TestBridge_HandlerError(t *testing.T) {
	b := newTestBridge(t, nil)
	id, _, err := b.Open("/src/main.go", textcodec.NewDocument(source))
	require.NoError(t, err)

	boom := errors.New("boom")
	require.NoError(t, b.Register(id, handler.HandlerFunc(func(context.Context, *completion.Result) error {
		return boom
	})))

	_, err = b.Deliver(context.Background(), id, []byte(payload))
	assert.ErrorIs(t, err, boom)
}

func TestBridge_CloseClearsHandler(t *testing.T) {
	b := newTestBridge(t, nil)
	id, _, err := b.Open("/src/main.go", textcodec.NewDocument(source))
	require.NoError(t, err)

	require.NoError(t, b.Register(id, handler.HandlerFunc(func(context.Context, *completion.Result) error { return nil })))
	b.Close(id)

	_, ok := b.Handler(id)
	assert.False(t, ok)

	_, err = b.Request(id, textcodec.NewDocument(source), 0, protocol.TriggerKindInvoke)
	var unknown *UnknownEditorError
	assert.ErrorAs(t, err, &unknown)

	err = b.Register(id, handler.HandlerFunc(func(context.Context, *completion.Result) error { return nil }))
	assert.ErrorAs(t, err, &unknown)
}

func TestBridge_Aliases(t *testing.T) {
	dir := t.TempDir()
	aliasFile := filepath.Join(dir, "aliases.yaml")
	content := "aliases:\n  - editor: file:///src/main.go\n    agent: untitled:Untitled-1\n"
	require.NoError(t, os.WriteFile(aliasFile, []byte(content), 0644))

	cfg := &config.Config{URI: config.URIConfig{AliasesFile: aliasFile}}
	b := newTestBridge(t, cfg)

	assert.Equal(t, "untitled:Untitled-1", b.DocumentURI("/src/main.go"))
	assert.Equal(t, "file:///src/other.go", b.DocumentURI("/src/other.go"))

	b.RememberAgentURI("/src/other.go", "untitled:Untitled-2")
	assert.Equal(t, "untitled:Untitled-2", b.DocumentURI("/src/other.go"))
}

func TestBridge_BadAliasesFile(t *testing.T) {
	cfg := &config.Config{URI: config.URIConfig{AliasesFile: "/nonexistent/aliases.yaml"}}
	_, err := New(cfg, zaptest.NewLogger(t))
	require.Error(t, err)
}
