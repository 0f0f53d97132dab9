// Package redaction scrubs secrets from guest output and logged payloads.
package redaction

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

const redactedMarker = "[REDACTED]"

// keyContext is the blake3 key-derivation context for hash mode.
const keyContext = "capbridge 2024 redaction hash key"

// Redactor replaces secrets with a marker or a keyed hash.
// It is immutable after construction and safe for concurrent use.
type Redactor struct {
	detector *detect.Detector
	patterns []*regexp.Regexp
	keys     []string
	hashKey  []byte
	hashMode bool
}

// Config holds the configuration for the Redactor.
type Config struct {
	// Patterns are additional regular expressions to redact.
	Patterns []string `yaml:"patterns" json:"patterns,omitempty"`
	// Keys are settings keys whose values are always redacted, e.g. "token".
	Keys []string `yaml:"keys" json:"keys,omitempty"`
	// HashMode replaces secrets with a keyed hash instead of the marker so
	// repeated occurrences can be correlated.
	HashMode bool `yaml:"hash_mode" json:"hash_mode,omitempty"`
	// Salt keys the hash.
	Salt string `yaml:"salt" json:"salt,omitempty"`
	// DisableGitleaks restricts detection to the built-in and custom patterns.
	DisableGitleaks bool `yaml:"disable_gitleaks" json:"disable_gitleaks,omitempty"`
}

// New creates a Redactor from cfg.
func New(cfg Config) (*Redactor, error) {
	r := &Redactor{
		keys:     cfg.Keys,
		hashMode: cfg.HashMode,
		patterns: make([]*regexp.Regexp, 0, len(defaultPatterns)+len(cfg.Patterns)),
	}

	if cfg.HashMode {
		r.hashKey = make([]byte, 32)
		blake3.DeriveKey(keyContext, []byte(cfg.Salt), r.hashKey)
	}

	if !cfg.DisableGitleaks {
		detector, err := newGitleaksDetector()
		if err != nil {
			return nil, err
		}
		r.detector = detector
	}

	for _, p := range append(append([]string{}, defaultPatterns...), cfg.Patterns...) {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile redaction pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	return r, nil
}

// newGitleaksDetector builds a detector from the gitleaks default rule set.
func newGitleaksDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}
	return detect.NewDetector(cfg), nil
}

// ScrubString replaces every detected secret in input.
func (r *Redactor) ScrubString(input string) string {
	if input == "" {
		return ""
	}

	result := input
	if r.detector != nil {
		for _, finding := range r.detector.Detect(detect.Fragment{Raw: result}) {
			if finding.Secret == "" {
				continue
			}
			result = strings.ReplaceAll(result, finding.Secret, r.replacement(finding.Secret))
		}
	}

	for _, re := range r.patterns {
		result = re.ReplaceAllStringFunc(result, r.replacement)
	}
	return result
}

// ScrubBytes is ScrubString for byte payloads.
func (r *Redactor) ScrubBytes(input []byte) []byte {
	return []byte(r.ScrubString(string(input)))
}

// Preview renders a payload for a log line with secrets removed. It is
// suitable as the preview function of the capability logging middleware.
func (r *Redactor) Preview(input []byte) string {
	const limit = 256
	s := r.ScrubString(string(input))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// Settings returns a copy of settings with secret values scrubbed. Values
// under a configured key are replaced entirely.
func (r *Redactor) Settings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	out := make(map[string]any, len(settings))
	for k, v := range settings {
		out[k] = r.walk(k, v)
	}
	return out
}

func (r *Redactor) walk(key string, v any) any {
	switch val := v.(type) {
	case string:
		if r.isSecretKey(key) {
			return r.replacement(val)
		}
		return r.ScrubString(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = r.walk(k, item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.walk(key, item)
		}
		return out
	default:
		return v
	}
}

func (r *Redactor) isSecretKey(key string) bool {
	for _, k := range r.keys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func (r *Redactor) replacement(secret string) string {
	if !r.hashMode {
		return redactedMarker
	}
	h, _ := blake3.NewKeyed(r.hashKey)
	_, _ = h.Write([]byte(secret))
	return fmt.Sprintf("[hash:%s]", hex.EncodeToString(h.Sum(nil)[:8]))
}

// defaultPatterns catch common credentials when gitleaks is disabled.
var defaultPatterns = []string{
	// AWS access key id
	`\b((?:AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16})\b`,
	`-----BEGIN [A-Z ]+ PRIVATE KEY-----`,
	`gh[pousr]_[A-Za-z0-9_]{36,255}`,
	`xox[baprs]-([0-9a-zA-Z]{10,48})?`,
}
