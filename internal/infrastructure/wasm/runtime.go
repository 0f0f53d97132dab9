// Package wasm runs WebAssembly guests against capability namespaces.
// Each namespace is mounted into the guest as a preopened directory whose
// entries are the capabilities of one sealed table.
package wasm

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/reglet-dev/capbridge/internal/domain/vfs"
	"github.com/reglet-dev/capbridge/internal/infrastructure/redaction"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/experimental"
	"github.com/tetratelabs/wazero/experimental/sysfs"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"
)

// globalCache speeds up compilation across runtimes.
var globalCache = wazero.NewCompilationCache()

// Config configures a Runtime.
type Config struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Redactor *redaction.Redactor // scrubs guest stdout and stderr when set

	Namespaces []vfs.Namespace

	// MemoryLimitMB caps guest memory. 0 selects the default, -1 disables
	// the limit.
	MemoryLimitMB int
	// Parallelism bounds RunAll. 0 means unbounded.
	Parallelism int
}

// Runtime compiles guests and runs them against shared namespaces.
// Guests running concurrently observe the same capability state.
type Runtime struct {
	runtime    wazero.Runtime
	namespaces []vfs.Namespace
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer

	mu     sync.RWMutex      // protects guests
	guests map[string]*Guest // compiled guests by content digest

	parallelism int
}

// NewRuntime creates a runtime with WASI instantiated and the given
// namespaces ready to mount.
func NewRuntime(ctx context.Context, cfg Config) (*Runtime, error) {
	memoryLimitMB := cfg.MemoryLimitMB
	switch {
	case memoryLimitMB == 0:
		memoryLimitMB = 256
		slog.Debug("using default WASM memory limit", "mb", memoryLimitMB)
	case memoryLimitMB == -1:
		slog.Warn("WASM memory limit disabled (unlimited memory)")
	case memoryLimitMB > 0:
		if memoryLimitMB < 64 {
			slog.Warn("WASM memory limit very low, guests may fail", "mb", memoryLimitMB)
		}
	default:
		return nil, fmt.Errorf("invalid WASM memory limit: %d (must be >= -1)", memoryLimitMB)
	}

	seen := make(map[string]bool, len(cfg.Namespaces))
	for _, ns := range cfg.Namespaces {
		mount := ns.MountPath()
		if mount == "/" {
			return nil, fmt.Errorf("namespace %s cannot be mounted at the guest root", ns.Plugin)
		}
		if seen[mount] {
			return nil, fmt.Errorf("duplicate namespace mount %s", mount)
		}
		seen[mount] = true
	}

	config := wazero.NewRuntimeConfig().
		WithCompilationCache(globalCache).
		WithCloseOnContextDone(true)
	if memoryLimitMB > 0 {
		// 1 page = 64KiB
		config = config.WithMemoryLimitPages(uint32(memoryLimitMB * 16)) //nolint:gosec // G115: bounded by config validation
	}

	r := wazero.NewRuntimeWithConfig(ctx, config)
	// fd_write is observed so vectored writes to a capability form one request.
	wasiCtx := experimental.WithFunctionListenerFactory(ctx, gatherListenerFactory{})
	if _, err := wasi_snapshot_preview1.Instantiate(wasiCtx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	stdout, stderr := cfg.Stdout, cfg.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if cfg.Redactor != nil {
		stdout = redaction.NewWriter(stdout, cfg.Redactor)
		stderr = redaction.NewWriter(stderr, cfg.Redactor)
	}

	return &Runtime{
		runtime:     r,
		namespaces:  cfg.Namespaces,
		stdin:       cfg.Stdin,
		stdout:      stdout,
		stderr:      stderr,
		guests:      make(map[string]*Guest),
		parallelism: cfg.Parallelism,
	}, nil
}

// Load compiles a guest. Identical modules are compiled once.
func (r *Runtime) Load(ctx context.Context, name string, wasmBytes []byte) (*Guest, error) {
	sum := blake3.Sum256(wasmBytes)
	digest := hex.EncodeToString(sum[:])

	r.mu.RLock()
	if g, ok := r.guests[digest]; ok {
		r.mu.RUnlock()
		return g.withName(name), nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.guests[digest]; ok {
		return g.withName(name), nil
	}

	compiled, err := r.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile guest %s: %w", name, err)
	}

	g := &Guest{name: name, digest: digest, module: compiled}
	r.guests[digest] = g
	slog.Debug("compiled guest", "guest", name, "digest", digest[:16])
	return g, nil
}

// Run instantiates g with every namespace mounted and runs it to completion.
// A guest that exits with status 0 is successful; any other status is
// returned as an *ExitError.
func (r *Runtime) Run(ctx context.Context, g *Guest, args ...string) error {
	ctx = withWriteGather(ctx, &writeGather{})
	mod, err := r.runtime.InstantiateModule(ctx, g.module, r.moduleConfig(ctx, g, args))
	if err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.ExitCode() == 0 {
				return nil
			}
			return &ExitError{Guest: g.name, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run guest %s: %w", g.name, err)
	}
	return mod.Close(ctx)
}

// RunAll runs the guests concurrently against the same namespaces and
// returns the first failure.
func (r *Runtime) RunAll(ctx context.Context, guests []*Guest, args ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	if r.parallelism > 0 {
		g.SetLimit(r.parallelism)
	}
	for _, guest := range guests {
		g.Go(func() error {
			return r.Run(gctx, guest, args...)
		})
	}
	return g.Wait()
}

// moduleConfig mounts every namespace and wires redacted stdio.
func (r *Runtime) moduleConfig(ctx context.Context, g *Guest, args []string) wazero.ModuleConfig {
	fsConfig := wazero.NewFSConfig()
	for _, ns := range r.namespaces {
		fsConfig = fsConfig.(sysfs.FSConfig).WithSysFSMount(NewFS(ctx, ns.Directory), ns.MountPath())
		slog.Debug("mounting capability namespace",
			"guest", g.name,
			"mount", ns.MountPath(),
			"plugin", ns.Plugin,
			"capabilities", ns.Directory.Table().Len())
	}

	config := wazero.NewModuleConfig().
		// Anonymous so the same module can run concurrently.
		WithName("").
		WithFSConfig(fsConfig).
		WithArgs(append([]string{g.name}, args...)...).
		WithSysWalltime().
		WithSysNanotime().
		WithSysNanosleep().
		WithRandSource(rand.Reader).
		WithStdout(r.stdout).
		WithStderr(r.stderr)
	if r.stdin != nil {
		config = config.WithStdin(r.stdin)
	}
	return config
}

// Namespaces returns the namespaces mounted into every guest.
func (r *Runtime) Namespaces() []vfs.Namespace {
	return r.namespaces
}

// Close closes the runtime and every compiled guest.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}
