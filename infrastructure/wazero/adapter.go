package wazero

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	domainerrors "github.com/reglet-dev/guessgame/domain/errors"
	"github.com/reglet-dev/guessgame/domain/ports"
	"github.com/reglet-dev/guessgame/hostfuncs"
)

// DefaultModuleName is the import module guests link against.
const DefaultModuleName = "env"

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// ModuleName is the host module name (default: "env").
	ModuleName string

	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps the wazero default.
	MemoryLimitPages uint32

	// CloseOnContextDone interrupts running guest code when the context passed
	// to Call is cancelled or times out.
	CloseOnContextDone bool
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name (default: "env").
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMemoryLimitPages caps guest memory in 64KiB pages.
func WithMemoryLimitPages(pages uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MemoryLimitPages = pages
	}
}

// WithCloseOnContextDone makes context cancellation interrupt guest execution.
func WithCloseOnContextDone(enabled bool) AdapterOption {
	return func(c *AdapterConfig) {
		c.CloseOnContextDone = enabled
	}
}

// defaultAdapterConfig returns the default adapter configuration.
func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName: DefaultModuleName,
	}
}

// Runtime is a ports.SandboxRuntime backed by wazero.
type Runtime struct {
	runtime wazero.Runtime

	// host is the signature set exported by the host module, fixed by the
	// first import table instantiated against this runtime.
	host   map[string]ports.FunctionDef
	hostMu sync.Mutex

	bindings   map[string]ports.ImportTable
	bindingsMu sync.RWMutex

	cfg AdapterConfig
	seq atomic.Uint64
}

var _ ports.SandboxRuntime = (*Runtime)(nil)

// NewRuntime creates a wazero runtime with the given options.
func NewRuntime(ctx context.Context, opts ...AdapterOption) (*Runtime, error) {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ModuleName == "" {
		return nil, fmt.Errorf("host module name cannot be empty")
	}

	rc := wazero.NewRuntimeConfig().WithCloseOnContextDone(cfg.CloseOnContextDone)
	if cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	return &Runtime{
		runtime:  wazero.NewRuntimeWithConfig(ctx, rc),
		bindings: make(map[string]ports.ImportTable),
		cfg:      cfg,
	}, nil
}

// Close releases the runtime and everything compiled or instantiated by it.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// ModuleName returns the host import module name.
func (r *Runtime) ModuleName() string {
	return r.cfg.ModuleName
}

// Compile validates and compiles a binary module.
func (r *Runtime) Compile(ctx context.Context, wasm []byte) (ports.CompiledModule, error) {
	if len(wasm) == 0 {
		return nil, &domainerrors.CompileError{Err: errors.New("empty module")}
	}

	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		Logger().Warn("compile failed", zap.Int("size", len(wasm)), zap.Error(err))
		return nil, &domainerrors.CompileError{Err: err}
	}

	Logger().Debug("module compiled",
		zap.Int("size", len(wasm)),
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Int("exports", len(compiled.ExportedFunctions())))

	return newCompiledModule(compiled), nil
}

// Instantiate links a compiled module against imports and instantiates it.
// Every function the guest imports must be exported by the host module with
// an identical signature.
func (r *Runtime) Instantiate(ctx context.Context, module ports.CompiledModule, imports ports.ImportTable) (ports.Instance, error) {
	cm, ok := module.(*CompiledModule)
	if !ok {
		return nil, &domainerrors.LinkError{Reason: fmt.Sprintf("module of type %T was not compiled by this runtime", module)}
	}

	if err := r.ensureHostModule(ctx, imports); err != nil {
		return nil, err
	}
	if err := r.checkImports(cm); err != nil {
		Logger().Warn("link check failed", zap.Error(err))
		return nil, err
	}

	name := fmt.Sprintf("player-%d", r.seq.Add(1))
	r.bind(name, imports)

	cfg := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions("_initialize")

	mod, err := r.runtime.InstantiateModule(ctx, cm.compiled, cfg)
	if err != nil {
		r.unbind(name)
		Logger().Warn("instantiate failed", zap.String("instance", name), zap.Error(err))
		return nil, &domainerrors.LinkError{Err: err}
	}

	Logger().Debug("instance created", zap.String("instance", name))
	return &Instance{module: mod, runtime: r, name: name}, nil
}

// ensureHostModule instantiates the host module on first use and verifies
// that later import tables offer exactly the same functions.
func (r *Runtime) ensureHostModule(ctx context.Context, imports ports.ImportTable) error {
	want := importTableDefs(r.cfg.ModuleName, imports)

	r.hostMu.Lock()
	defer r.hostMu.Unlock()

	if r.host != nil {
		if !sameDefs(r.host, want) {
			return &domainerrors.LinkError{
				Import: r.cfg.ModuleName,
				Reason: "import table does not match the host module already instantiated",
			}
		}
		return nil
	}

	builder := r.runtime.NewHostModuleBuilder(r.cfg.ModuleName)
	for _, name := range sortedKeys(want) {
		def := want[name]
		builder.NewFunctionBuilder().
			WithGoModuleFunction(r.dispatch(name), toAPITypes(def.Params), toAPITypes(def.Results)).
			WithName(name).
			Export(name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return &domainerrors.LinkError{Import: r.cfg.ModuleName, Reason: "host module instantiation failed", Err: err}
	}

	r.host = want
	return nil
}

// checkImports verifies that every guest import resolves against the host module.
func (r *Runtime) checkImports(cm *CompiledModule) error {
	r.hostMu.Lock()
	host := r.host
	r.hostMu.Unlock()

	for _, imp := range cm.ImportedFunctions() {
		qualified := imp.Module + "." + imp.Name
		if imp.Module != r.cfg.ModuleName {
			return &domainerrors.LinkError{Import: qualified, Reason: fmt.Sprintf("unknown import module %q", imp.Module)}
		}
		provided, ok := host[imp.Name]
		if !ok {
			return &domainerrors.LinkError{Import: qualified, Reason: "not provided by host"}
		}
		if !provided.SameSignature(imp) {
			return &domainerrors.LinkError{
				Import: qualified,
				Reason: fmt.Sprintf("signature mismatch: guest wants %s, host provides %s", imp, provided),
			}
		}
	}
	return nil
}

// dispatch returns the wazero host function that forwards calls to the import
// table bound to the calling instance. Failures panic, which wazero surfaces
// to the caller of the guest export as a trap.
func (r *Runtime) dispatch(name string) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		instance := mod.Name()
		imports, ok := r.binding(instance)
		if !ok {
			panic(fmt.Errorf("no import table bound to instance %q", instance))
		}
		if err := imports.Invoke(hostfuncs.WithInstanceName(ctx, instance), name, stack); err != nil {
			Logger().Error("host function failed",
				zap.String("instance", instance),
				zap.String("function", name),
				zap.Error(err))
			panic(err)
		}
	}
}

func (r *Runtime) bind(name string, imports ports.ImportTable) {
	r.bindingsMu.Lock()
	defer r.bindingsMu.Unlock()
	r.bindings[name] = imports
}

func (r *Runtime) unbind(name string) {
	r.bindingsMu.Lock()
	defer r.bindingsMu.Unlock()
	delete(r.bindings, name)
}

func (r *Runtime) binding(name string) (ports.ImportTable, bool) {
	r.bindingsMu.RLock()
	defer r.bindingsMu.RUnlock()
	imports, ok := r.bindings[name]
	return imports, ok
}

// CompiledModule is a module compiled by a Runtime.
type CompiledModule struct {
	compiled wazero.CompiledModule
	imports  []ports.FunctionDef
	exports  []ports.FunctionDef
}

var _ ports.CompiledModule = (*CompiledModule)(nil)

func newCompiledModule(compiled wazero.CompiledModule) *CompiledModule {
	cm := &CompiledModule{compiled: compiled}

	for _, def := range compiled.ImportedFunctions() {
		modName, name, _ := def.Import()
		cm.imports = append(cm.imports, ports.FunctionDef{
			Module:  modName,
			Name:    name,
			Params:  fromAPITypes(def.ParamTypes()),
			Results: fromAPITypes(def.ResultTypes()),
		})
	}

	exported := compiled.ExportedFunctions()
	for _, name := range sortedKeys(exported) {
		def := exported[name]
		cm.exports = append(cm.exports, ports.FunctionDef{
			Name:    name,
			Params:  fromAPITypes(def.ParamTypes()),
			Results: fromAPITypes(def.ResultTypes()),
		})
	}
	return cm
}

// ImportedFunctions lists the functions the module imports, in order.
func (m *CompiledModule) ImportedFunctions() []ports.FunctionDef {
	return slices.Clone(m.imports)
}

// ExportedFunctions lists the functions the module exports, sorted by name.
func (m *CompiledModule) ExportedFunctions() []ports.FunctionDef {
	return slices.Clone(m.exports)
}

// Close releases the compiled code.
func (m *CompiledModule) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// Instance is one instantiated guest module.
type Instance struct {
	module  api.Module
	runtime *Runtime
	name    string
}

var _ ports.Instance = (*Instance)(nil)

// Name returns the runtime-unique instance name.
func (i *Instance) Name() string {
	return i.name
}

// Call invokes a zero-argument export. Traps, host function failures and
// context interruption are returned as errors.
func (i *Instance) Call(ctx context.Context, export string) error {
	fn := i.module.ExportedFunction(export)
	if fn == nil {
		return fmt.Errorf("export %q not found", export)
	}
	if _, err := fn.Call(ctx); err != nil {
		Logger().Debug("guest call failed",
			zap.String("instance", i.name),
			zap.String("export", export),
			zap.Error(err))
		return err
	}
	return nil
}

// Close releases the instance and unbinds its import table.
func (i *Instance) Close(ctx context.Context) error {
	i.runtime.unbind(i.name)
	return i.module.Close(ctx)
}

func importTableDefs(moduleName string, imports ports.ImportTable) map[string]ports.FunctionDef {
	defs := make(map[string]ports.FunctionDef)
	for _, name := range imports.Names() {
		params, results, ok := imports.Signature(name)
		if !ok {
			continue
		}
		defs[name] = ports.FunctionDef{Module: moduleName, Name: name, Params: params, Results: results}
	}
	return defs
}

func sameDefs(a, b map[string]ports.FunctionDef) bool {
	if len(a) != len(b) {
		return false
	}
	for name, def := range a {
		other, ok := b[name]
		if !ok || !def.SameSignature(other) {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toAPITypes(types []ports.ValueType) []api.ValueType {
	out := make([]api.ValueType, len(types))
	for i, t := range types {
		out[i] = api.ValueType(t)
	}
	return out
}

func fromAPITypes(types []api.ValueType) []ports.ValueType {
	out := make([]ports.ValueType, len(types))
	for i, t := range types {
		out[i] = ports.ValueType(t)
	}
	return out
}
