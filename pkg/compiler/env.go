package compiler

import (
	"github.com/HugoGGuerrier/lkql-jit/pkg/bytecode"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
	"github.com/HugoGGuerrier/lkql-jit/pkg/ir"
)

// ResolutionKind says how a name lookup resolved.
type ResolutionKind uint8

const (
	NotFound ResolutionKind = iota
	ResolvedSlot
	ResolvedSpill
	ResolvedUpvalue
)

// LocalResult is the outcome of a local declaration or lookup: a register
// slot, a synthesized global name for a spilled local, or nothing.
type LocalResult struct {
	Kind ResolutionKind
	Slot uint8
	Name string
}

// UpvalueResult is the outcome of an upvalue lookup: an upvalue index, the
// synthesized global name of a spilled outer local, or nothing.
type UpvalueResult struct {
	Kind    ResolutionKind
	Upvalue uint8
	Name    string
}

// CompilationEnv holds all state of one compilation: the program being
// built, the stack of per-function environments, and the set of declared
// global names. Nothing here is process-wide, so independent compilations
// can run in parallel with their own environments.
type CompilationEnv struct {
	Program *bytecode.Program

	// scopes is the function nesting stack, index 0 = innermost. Upvalue
	// lookup recurses over these indices; a scope never holds a reference
	// to its parent.
	scopes []*LocalEnv

	globals map[string]struct{}
}

// NewCompilationEnv creates an environment with the builtin globals
// declared and no open scope.
func NewCompilationEnv() *CompilationEnv {
	ce := &CompilationEnv{
		Program: bytecode.NewProgram(),
		globals: make(map[string]struct{}),
	}
	for _, name := range builtinNames {
		ce.globals[name] = struct{}{}
	}
	return ce
}

func (ce *CompilationEnv) current() *LocalEnv {
	if len(ce.scopes) == 0 {
		errors.Internalf("no open function scope")
	}
	return ce.scopes[0]
}

// Depth returns the nesting depth of the current function, 0 for top level.
func (ce *CompilationEnv) Depth() int {
	return ce.current().depth
}

// OpenScope pushes a new function environment with slots 0..argCount
// reserved for the arguments.
func (ce *CompilationEnv) OpenScope(argCount uint8) {
	env := newLocalEnv(len(ce.scopes), argCount)
	ce.scopes = append([]*LocalEnv{env}, ce.scopes...)
}

// CloseScope finalizes the current function (terminal return, jump
// resolution, frame size), moves its prototype into the program, and
// registers a child constant in the enclosing function. It returns the
// child's constant-pool index for the parent's FNEW operand, or -1 when the
// closed scope was the top level.
func (ce *CompilationEnv) CloseScope() int {
	env := ce.current()
	ce.scopes = ce.scopes[1:]

	// Children close before their parents, which is exactly the dump order
	// the loader wants.
	ce.Program.Prototypes = append(ce.Program.Prototypes, env.finalize())

	if len(ce.scopes) == 0 {
		return -1
	}
	parent := ce.scopes[0]
	parent.hasChild = true
	return int(parent.proto.AddGC(bytecode.KChild{}))
}

// OpenBlock pushes a lexical block in the current function.
func (ce *CompilationEnv) OpenBlock() {
	ce.current().openBlock()
}

// CloseBlock pops the innermost block, freeing every slot it declared.
func (ce *CompilationEnv) CloseBlock() {
	ce.current().closeBlock()
}

// BindParam records an argument name for its pre-reserved slot.
func (ce *CompilationEnv) BindParam(name string, slot uint8) {
	env := ce.current()
	env.blocks[len(env.blocks)-1].vars[name] = slot
}

// DeclareLocal allocates a slot for name in the current block, or spills it
// to a synthesized global name when the register file is too full. Never
// fails.
func (ce *CompilationEnv) DeclareLocal(name string) LocalResult {
	return ce.current().declareLocal(name)
}

// LookupLocal resolves name inside the current function only.
func (ce *CompilationEnv) LookupLocal(name string) LocalResult {
	return ce.current().lookupLocal(name)
}

// LookupUpvalue resolves name in the enclosing functions, building the
// capture chain. Every intermediate function gets its own upvalue entry;
// each function caches its entries so a name captured twice reuses the same
// index. A name that was spilled in the owning function comes back as a
// spill result, since upvalues cannot point at the global table.
func (ce *CompilationEnv) LookupUpvalue(name string) UpvalueResult {
	return ce.lookupUpvalueAt(0, name)
}

func (ce *CompilationEnv) lookupUpvalueAt(level int, name string) UpvalueResult {
	env := ce.scopes[level]
	if idx, ok := env.upvalues[name]; ok {
		return UpvalueResult{Kind: ResolvedUpvalue, Upvalue: idx}
	}
	if level+1 >= len(ce.scopes) {
		return UpvalueResult{Kind: NotFound}
	}

	// Look at the immediately enclosing function first.
	parent := ce.scopes[level+1]
	switch local := parent.lookupLocal(name); local.Kind {
	case ResolvedSlot:
		return UpvalueResult{
			Kind:    ResolvedUpvalue,
			Upvalue: ce.addUpvalue(env, name, bytecode.UpvalLocalTag|uint16(local.Slot)),
		}
	case ResolvedSpill:
		return UpvalueResult{Kind: ResolvedSpill, Name: local.Name}
	}

	// Not a local of the parent: recurse outward, and on success chain
	// through the parent's own upvalue for it.
	outer := ce.lookupUpvalueAt(level+1, name)
	if outer.Kind != ResolvedUpvalue {
		return outer
	}
	return UpvalueResult{
		Kind:    ResolvedUpvalue,
		Upvalue: ce.addUpvalue(env, name, uint16(outer.Upvalue)),
	}
}

func (ce *CompilationEnv) addUpvalue(env *LocalEnv, name string, ref uint16) uint8 {
	if len(env.proto.Upvalues) >= 0xFF {
		errors.Internalf("too many upvalues in one function")
	}
	idx := uint8(len(env.proto.Upvalues))
	env.proto.Upvalues = append(env.proto.Upvalues, ref)
	env.upvalues[name] = idx
	return idx
}

// DeclareGlobal adds name to the set of known globals.
func (ce *CompilationEnv) DeclareGlobal(name string) {
	ce.globals[name] = struct{}{}
}

// IsGlobal reports whether name is a declared global.
func (ce *CompilationEnv) IsGlobal(name string) bool {
	_, ok := ce.globals[name]
	return ok
}

// NewTmp allocates one free slot. Exhaustion of the whole register file is
// unrecoverable.
func (ce *CompilationEnv) NewTmp() uint8 {
	slot := ce.current().allocSlot()
	if slot < 0 {
		errors.Internalf("out of register slots for a temporary")
	}
	return uint8(slot)
}

// NewTmps allocates n contiguous free slots and returns the base. Call and
// table-construction instructions address base+count, so a fragmented run is
// useless; failure to find one is unrecoverable.
func (ce *CompilationEnv) NewTmps(n int) uint8 {
	base := ce.current().allocRun(n)
	if base < 0 {
		errors.Internalf("no run of %d contiguous register slots", n)
	}
	return uint8(base)
}

// FreeTmp releases a temporary slot. The environment does no lifetime
// tracking; freeing is the caller's responsibility.
func (ce *CompilationEnv) FreeTmp(slot uint8) {
	ce.current().freeSlot(slot)
}

// FreeTmps releases the n slots starting at base.
func (ce *CompilationEnv) FreeTmps(base uint8, n int) {
	env := ce.current()
	for i := 0; i < n; i++ {
		env.freeSlot(base + uint8(i))
	}
}

// NewLabel returns a fresh jump label for the current function.
func (ce *CompilationEnv) NewLabel() uint64 {
	return ce.current().newLabel()
}

// Emit appends one instruction to the current function's body.
func (ce *CompilationEnv) Emit(ins ir.Instruction) {
	env := ce.current()
	env.code = append(env.code, ins)
}

// AddNumeric appends a numeric constant to the current function's pool.
func (ce *CompilationEnv) AddNumeric(k bytecode.NumericConstant) uint16 {
	return ce.current().proto.AddNumeric(k)
}

// InternString deduplicates s into the current function's constant pool.
func (ce *CompilationEnv) InternString(s string) uint16 {
	return ce.current().internString(s)
}

// ExprSlot returns the slot the expression under compilation must land in,
// or -1 when none is set.
func (ce *CompilationEnv) ExprSlot() int {
	return ce.current().exprSlot
}

// SetExprSlot designates the slot expression results land in.
func (ce *CompilationEnv) SetExprSlot(slot int) {
	ce.current().exprSlot = slot
}

// ReturnSlot returns the slot the terminal return reads, or -1.
func (ce *CompilationEnv) ReturnSlot() int {
	return ce.current().returnSlot
}

// SetReturnSlot designates the slot the function returns.
func (ce *CompilationEnv) SetReturnSlot(slot int) {
	ce.current().returnSlot = slot
}

// StringPoolSize reports how many GC constants the current function has
// accumulated. Exposed for tests.
func (ce *CompilationEnv) StringPoolSize() int {
	return len(ce.current().proto.GCConstants)
}

// Code returns the current function's instruction list. Exposed for tests.
func (ce *CompilationEnv) Code() []ir.Instruction {
	return ce.current().code
}
