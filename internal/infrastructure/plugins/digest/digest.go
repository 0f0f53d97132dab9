// Package digest provides BLAKE3 hashing capabilities.
package digest

import (
	"encoding/hex"
	"sync"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/pluginkit"
	"github.com/zeebo/blake3"
)

const (
	// Name is the plugin name and its default mount.
	Name = "digest"
	// Version is the plugin version.
	Version = "1.0.0"

	keyContext = "capbridge 2024 digest plugin key"
)

// Settings configure the digest namespace.
type Settings struct {
	// Key switches every hash to keyed mode. The key is derived from this
	// value, so any length works.
	Key string `mapstructure:"key"`
}

// Plugin exposes one-shot and running BLAKE3 digests.
type Plugin struct{}

// New creates the digest plugin.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string    { return Name }
func (p *Plugin) Version() string { return Version }

func (p *Plugin) Description() string {
	return "BLAKE3 digests: sum hashes each request, stream hashes everything written since the last reset"
}

// Register adds the digest capabilities.
func (p *Plugin) Register(b *capabilities.Builder, raw map[string]any) error {
	var s Settings
	if err := pluginkit.Decode(raw, &s); err != nil {
		return err
	}

	h := &hasher{}
	if s.Key != "" {
		h.key = make([]byte, 32)
		blake3.DeriveKey(keyContext, []byte(s.Key), h.key)
	}
	running, err := h.new()
	if err != nil {
		return err
	}
	r := &runningHash{hash: running, hasher: h}

	resetCap := capabilities.New("reset", capabilities.WriteOnly, r, reset)
	streamCap := capabilities.New("stream", capabilities.ReadWrite, r, stream)
	// sum only reads the immutable key and stays out of the running group.
	capabilities.Group(resetCap, streamCap)

	return pluginkit.RegisterAll(b,
		resetCap,
		streamCap,
		capabilities.New("sum", capabilities.ReadWrite, h, sum),
	)
}

// hasher creates plain or keyed hashes.
type hasher struct {
	key []byte
}

func (h *hasher) new() (*blake3.Hasher, error) {
	if h.key == nil {
		return blake3.New(), nil
	}
	return blake3.NewKeyed(h.key)
}

// runningHash is shared by stream and reset.
type runningHash struct {
	mu     sync.Mutex
	hash   *blake3.Hasher
	hasher *hasher
}

// sum emits the hex digest of the request.
func sum(h *hasher, input []byte) (*hasher, []byte, error) {
	d, err := h.new()
	if err != nil {
		return h, nil, err
	}
	_, _ = d.Write(input)
	return h, hexDigest(d), nil
}

// stream folds the request into the running hash and emits the digest of
// everything written so far.
func stream(r *runningHash, input []byte) (*runningHash, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.hash.Write(input)
	return r, hexDigest(r.hash), nil
}

func reset(r *runningHash, _ []byte) (*runningHash, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hash.Reset()
	return r, nil, nil
}

func hexDigest(h *blake3.Hasher) []byte {
	out := make([]byte, hex.EncodedLen(32))
	hex.Encode(out, h.Sum(nil))
	return out
}
