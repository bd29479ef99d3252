// Package codec locates and invokes the token builder linked into the process.
//
// Token builders have shipped several incompatible entry points over time: free functions and
// methods, seven and six argument forms, different spellings of the same name. A Library exposes
// the builder's exported symbols by name, and the Dispatcher probes them against a fixed,
// priority-ordered list of known call shapes.
package codec

import (
	"fmt"
	"plugin"
)

// Library exposes the exported symbols of a linked token builder.
type Library interface {
	Lookup(symbol string) (any, bool)
}

// Symbols is an in-process Library keyed by exported name.
type Symbols map[string]any

// Lookup returns the named symbol when it is present and non-nil.
func (s Symbols) Lookup(symbol string) (any, bool) {
	v, ok := s[symbol]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

type pluginLibrary struct {
	plug *plugin.Plugin
}

// OpenPlugin loads a token builder compiled with -buildmode=plugin.
func OpenPlugin(path string) (Library, error) {
	plug, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open codec plugin %s: %w", path, err)
	}
	return &pluginLibrary{plug: plug}, nil
}

func (l *pluginLibrary) Lookup(symbol string) (any, bool) {
	sym, err := l.plug.Lookup(symbol)
	if err != nil || sym == nil {
		return nil, false
	}
	return sym, true
}
