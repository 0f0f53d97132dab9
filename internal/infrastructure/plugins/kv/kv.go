// Package kv provides an in-memory JSON key/value namespace.
package kv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/pluginkit"
)

const (
	// Name is the plugin name and its default mount.
	Name = "kv"
	// Version is the plugin version.
	Version = "1.0.0"
)

// Settings configure the kv namespace.
type Settings struct {
	// Initial seeds the store.
	Initial map[string]any `mapstructure:"initial"`
	// MaxEntries bounds the number of keys. 0 means unbounded.
	MaxEntries int `mapstructure:"max_entries"`
}

// Plugin exposes set, get and keys over one shared store.
type Plugin struct{}

// New creates the kv plugin.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string    { return Name }
func (p *Plugin) Version() string { return Version }

func (p *Plugin) Description() string {
	return `Key/value store: set {"key","value"}, get {"key"}, keys lists every key`
}

// Register adds the kv capabilities.
func (p *Plugin) Register(b *capabilities.Builder, raw map[string]any) error {
	var s Settings
	if err := pluginkit.Decode(raw, &s); err != nil {
		return err
	}

	st := &store{entries: make(map[string][]byte, len(s.Initial)), maxEntries: s.MaxEntries}
	for key, v := range s.Initial {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("initial value %q: %w", key, err)
		}
		st.entries[key] = data
	}

	return pluginkit.RegisterShared(b,
		capabilities.New("get", capabilities.ReadWrite, st, get),
		capabilities.New("keys", capabilities.ReadOnly, st, keys),
		capabilities.New("set", capabilities.WriteOnly, st, set),
	)
}

// store is shared by every kv capability.
type store struct {
	mu         sync.RWMutex
	entries    map[string][]byte
	maxEntries int
}

type setRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type getRequest struct {
	Key string `json:"key"`
}

func set(st *store, input []byte) (*store, []byte, error) {
	if err := setSchema.ValidateJSON(input); err != nil {
		return st, nil, err
	}
	var req setRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return st, nil, fmt.Errorf("invalid request: %w", err)
	}

	var value bytes.Buffer
	if err := json.Compact(&value, req.Value); err != nil {
		return st, nil, fmt.Errorf("invalid value: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.entries[req.Key]; !exists && st.maxEntries > 0 && len(st.entries) >= st.maxEntries {
		return st, nil, fmt.Errorf("store full (%d entries)", st.maxEntries)
	}
	st.entries[req.Key] = value.Bytes()
	return st, nil, nil
}

func get(st *store, input []byte) (*store, []byte, error) {
	if err := getSchema.ValidateJSON(input); err != nil {
		return st, nil, err
	}
	var req getRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return st, nil, fmt.Errorf("invalid request: %w", err)
	}

	st.mu.RLock()
	defer st.mu.RUnlock()
	value, ok := st.entries[req.Key]
	if !ok {
		return st, nil, fmt.Errorf("key %q not found", req.Key)
	}
	return st, append([]byte(nil), value...), nil
}

// keys emits the sorted key list as a JSON array.
func keys(st *store, _ []byte) (*store, []byte, error) {
	st.mu.RLock()
	names := make([]string, 0, len(st.entries))
	for k := range st.entries {
		names = append(names, k)
	}
	st.mu.RUnlock()

	sort.Strings(names)
	out, err := json.Marshal(names)
	return st, out, err
}
