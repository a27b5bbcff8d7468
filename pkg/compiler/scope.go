package compiler

import (
	"strings"

	"github.com/HugoGGuerrier/lkql-jit/pkg/bytecode"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
	"github.com/HugoGGuerrier/lkql-jit/pkg/ir"
)

// SlotCount is the size of a function's register file.
const SlotCount = 256

// SpillThreshold is the first slot index a local declaration refuses to use.
// The top of the register file is left to temporaries; a local that would
// land there is spilled to the global table under a synthesized name
// instead. Temporaries themselves may use the whole file.
const SpillThreshold = 220

// block is one name->slot map within a function, pushed and popped with
// lexical blocks so shadowed names resolve innermost-first and slots are
// reclaimed on block exit.
type block struct {
	vars map[string]uint8
	// spilled maps a source name to the synthesized global name the local
	// was spilled under. Lookups probe by source name.
	spilled map[string]string
}

func newBlock() *block {
	return &block{
		vars:    make(map[string]uint8),
		spilled: make(map[string]string),
	}
}

// LocalEnv is the per-function lexical environment: slot bitmap, block
// stack, constant caches and the accumulating instruction list. It owns its
// Prototype until the scope closes.
type LocalEnv struct {
	depth int
	proto *bytecode.Prototype
	code  []ir.Instruction

	occupied [SlotCount]bool
	maxSlot  int // highest slot ever allocated, -1 before the first

	blocks []*block // last entry is the innermost block

	strings  map[string]uint16 // string constant intern cache
	upvalues map[string]uint8  // captured name -> upvalue index

	exprSlot   int // slot the expression being compiled lands in, -1 if none
	returnSlot int // slot the terminal return reads, -1 for a bare return

	labels   uint64
	hasChild bool
}

func newLocalEnv(depth int, argCount uint8) *LocalEnv {
	env := &LocalEnv{
		depth:      depth,
		proto:      bytecode.NewPrototype(argCount),
		maxSlot:    -1,
		strings:    make(map[string]uint16),
		upvalues:   make(map[string]uint8),
		exprSlot:   -1,
		returnSlot: -1,
	}
	env.blocks = append(env.blocks, newBlock())
	for i := uint8(0); i < argCount; i++ {
		env.occupied[i] = true
		env.maxSlot = int(i)
	}
	return env
}

// allocSlot claims the lowest free slot, or returns -1 when the whole file
// is occupied.
func (env *LocalEnv) allocSlot() int {
	for i := 0; i < SlotCount; i++ {
		if !env.occupied[i] {
			env.occupied[i] = true
			if i > env.maxSlot {
				env.maxSlot = i
			}
			return i
		}
	}
	return -1
}

// allocRun claims n contiguous free slots and returns the base, or -1 when
// no run exists. The run restarts whenever an occupied slot is hit.
func (env *LocalEnv) allocRun(n int) int {
	start := 0
	for i := 0; i < SlotCount; i++ {
		if env.occupied[i] {
			start = i + 1
			continue
		}
		if i-start+1 == n {
			for s := start; s <= i; s++ {
				env.occupied[s] = true
			}
			if i > env.maxSlot {
				env.maxSlot = i
			}
			return start
		}
	}
	return -1
}

func (env *LocalEnv) freeSlot(s uint8) {
	env.occupied[s] = false
}

// spillName synthesizes the global name a spilled local is stored under.
// The depth prefix keeps same-named locals of different nesting depths from
// colliding in the global table.
func spillName(depth int, name string) string {
	return strings.Repeat("_", depth) + name
}

// newLabel returns a fresh jump label. Labels start at 1 so that 0 can mean
// "unlabeled" on instructions.
func (env *LocalEnv) newLabel() uint64 {
	env.labels++
	return env.labels
}

// finalize seals the environment's prototype: terminal return, jump
// resolution, frame size. Called exactly once, from CloseScope.
func (env *LocalEnv) finalize() *bytecode.Prototype {
	if env.returnSlot < 0 {
		env.code = append(env.code, ir.NewAD(bytecode.RET0, ir.Slot(0), ir.Literal(1)))
	} else {
		env.code = append(env.code, ir.NewAD(bytecode.RET1, ir.Slot(uint8(env.returnSlot)), ir.Literal(2)))
	}

	env.proto.Instructions = ir.Lower(env.code)
	env.proto.FrameSize = uint8(env.maxSlot + 1)
	if env.hasChild {
		env.proto.Flags |= bytecode.ProtoHasChild
	}
	return env.proto
}

// internString returns the constant-pool index for s, adding it to the pool
// on first use only.
func (env *LocalEnv) internString(s string) uint16 {
	if idx, ok := env.strings[s]; ok {
		return idx
	}
	idx := env.proto.AddGC(bytecode.KStr(s))
	env.strings[s] = idx
	return idx
}

// lookupLocal searches the block stack innermost-first. It never crosses
// into an enclosing function.
func (env *LocalEnv) lookupLocal(name string) LocalResult {
	for i := len(env.blocks) - 1; i >= 0; i-- {
		if slot, ok := env.blocks[i].vars[name]; ok {
			return LocalResult{Kind: ResolvedSlot, Slot: slot}
		}
		if global, ok := env.blocks[i].spilled[name]; ok {
			return LocalResult{Kind: ResolvedSpill, Name: global}
		}
	}
	return LocalResult{Kind: NotFound}
}

// declareLocal binds name in the innermost block, spilling to a synthesized
// global name when the register file is too full for another local.
func (env *LocalEnv) declareLocal(name string) LocalResult {
	inner := env.blocks[len(env.blocks)-1]

	slot := -1
	for i := 0; i < SlotCount; i++ {
		if !env.occupied[i] {
			slot = i
			break
		}
	}
	if slot < 0 || slot >= SpillThreshold {
		// The probed slot stays free for temporaries.
		global := spillName(env.depth, name)
		inner.spilled[name] = global
		return LocalResult{Kind: ResolvedSpill, Name: global}
	}

	env.occupied[slot] = true
	if slot > env.maxSlot {
		env.maxSlot = slot
	}
	inner.vars[name] = uint8(slot)
	return LocalResult{Kind: ResolvedSlot, Slot: uint8(slot)}
}

func (env *LocalEnv) openBlock() {
	env.blocks = append(env.blocks, newBlock())
}

// closeBlock pops the innermost block and returns its slots to the free set.
func (env *LocalEnv) closeBlock() {
	if len(env.blocks) <= 1 {
		errors.Internalf("block close with no open block")
	}
	inner := env.blocks[len(env.blocks)-1]
	for _, slot := range inner.vars {
		env.freeSlot(slot)
	}
	env.blocks = env.blocks[:len(env.blocks)-1]
}
