package uri

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// AliasMap remembers the URI the agent used for a file the editor also knows
// under its own URI. Safe for concurrent use.
type AliasMap struct {
	mu      sync.RWMutex
	aliases map[string]string // editor URI -> agent URI
}

// NewAliasMap creates an alias map seeded with the given entries.
func NewAliasMap(seed map[string]string) *AliasMap {
	m := &AliasMap{aliases: make(map[string]string, len(seed))}
	for editorURI, agentURI := range seed {
		m.aliases[Normalize(editorURI)] = agentURI
	}
	return m
}

// Remember records that the agent refers to editorURI as agentURI.
func (m *AliasMap) Remember(editorURI, agentURI string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[Normalize(editorURI)] = agentURI
}

// Resolve returns the agent's URI for editorURI, or the normalized editorURI
// when no alias is known.
func (m *AliasMap) Resolve(editorURI string) string {
	key := Normalize(editorURI)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if agentURI, ok := m.aliases[key]; ok {
		return agentURI
	}
	return key
}

// Forget drops the alias for editorURI.
func (m *AliasMap) Forget(editorURI string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.aliases, Normalize(editorURI))
}

// Len returns the number of known aliases.
func (m *AliasMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.aliases)
}

type aliasFile struct {
	Aliases []aliasEntry `yaml:"aliases"`
}

type aliasEntry struct {
	Editor string `yaml:"editor"`
	Agent  string `yaml:"agent"`
}

// LoadAliases reads a YAML alias file:
//
//	aliases:
//	  - editor: file:///C:/src/main.go
//	    agent: file:///c%3A/src/main.go
func LoadAliases(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AliasFileError{Path: path, Err: err}
	}

	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &AliasFileError{Path: path, Err: err}
	}

	aliases := make(map[string]string, len(f.Aliases))
	for i, entry := range f.Aliases {
		if entry.Editor == "" {
			return nil, &AliasValidationError{Path: path, Index: i, Field: "editor"}
		}
		if entry.Agent == "" {
			return nil, &AliasValidationError{Path: path, Index: i, Field: "agent"}
		}
		aliases[Normalize(entry.Editor)] = Normalize(entry.Agent)
	}

	return aliases, nil
}
