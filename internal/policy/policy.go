// Package policy describes which fields hold translatable text and how merged
// values are joined.
package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultJoin separates merged values when no key matches.
const DefaultJoin = " "

// Key is a translatable field name and the separator used when merging its
// values.
type Key struct {
	Name string `yaml:"name" toml:"name"`
	Join string `yaml:"join" toml:"join"`
}

// Policy is the translatable-field configuration. Key order matters for
// JoinFor: the first matching key wins.
type Policy struct {
	Keys []Key `yaml:"keys" toml:"keys"`
	// Extensions lists the file extensions recognised as documents.
	Extensions []string `yaml:"extensions" toml:"extensions"`
}

// Default returns the BetterQuesting quest-book policy.
func Default() *Policy {
	return &Policy{
		Keys: []Key{
			{Name: "betterquesting:10.name:8", Join: " | "},
			{Name: "betterquesting:10.desc:8", Join: `\n\n\n`},
		},
		Extensions: []string{".json"},
	}
}

// New builds a policy from field names with the default join.
func New(names ...string) *Policy {
	p := &Policy{Extensions: []string{".json"}}
	for _, n := range names {
		p.Keys = append(p.Keys, Key{Name: n})
	}
	return p
}

// Load reads a policy from a YAML (.yaml, .yml, .json) or TOML (.toml) file.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	p := &Policy{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("decode TOML policy %s: %w", path, err)
		}
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("decode YAML policy %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported policy file type: %s", path)
	}

	if len(p.Keys) == 0 {
		return nil, fmt.Errorf("policy %s declares no keys", path)
	}
	if len(p.Extensions) == 0 {
		p.Extensions = []string{".json"}
	}
	return p, nil
}

// Translatable reports whether values under name are translatable text.
func (p *Policy) Translatable(name string) bool {
	for _, k := range p.Keys {
		if k.Name == name {
			return true
		}
	}
	return false
}

// JoinFor returns the separator for a field path: the join of the first key
// the path ends with, or DefaultJoin. Keys with an empty join also fall back
// to DefaultJoin.
func (p *Policy) JoinFor(path string) string {
	for _, k := range p.Keys {
		if strings.HasSuffix(path, k.Name) {
			if k.Join == "" {
				return DefaultJoin
			}
			return k.Join
		}
	}
	return DefaultJoin
}

// IsDocument reports whether a file name has a document extension.
func (p *Policy) IsDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range p.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
