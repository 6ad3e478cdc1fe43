// Package scripting provides a sandboxed GopherLua execution environment
// for effect hook scripts. It has no dependency on combat domain types
// beyond the hook interface; content authors tune effect magnitudes in Lua
// without recompiling the engine.
package scripting

import (
	"context"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// hook execution when no override is configured.
const DefaultInstructionLimit = 100_000

// InstructionBudget is a context.Context that reports cancellation after
// Done() has been called limit times. GopherLua's mainLoopWithContext calls
// Done() once per opcode, making the budget an exact instruction counter.
//
// The budget is rearmed with Reset before every hook call, so one runaway
// script aborts only its own execution; the VM stays usable afterwards.
// Not safe for concurrent use: the VM is single-threaded and the hook
// runner serializes access to it.
type InstructionBudget struct {
	limit     int64
	remaining int64
	done      chan struct{}
	exhausted bool
}

func newInstructionBudget(limit int64) *InstructionBudget {
	return &InstructionBudget{limit: limit, remaining: limit, done: make(chan struct{})}
}

// Done decrements the remaining opcode count and returns the cancellation
// channel, closing it when the budget is spent.
func (b *InstructionBudget) Done() <-chan struct{} {
	b.remaining--
	if b.remaining <= 0 && !b.exhausted {
		b.exhausted = true
		close(b.done)
	}
	return b.done
}

// Err reports context.Canceled once the budget is exhausted.
func (b *InstructionBudget) Err() error {
	if b.exhausted {
		return context.Canceled
	}
	return nil
}

// Deadline reports no deadline; the budget counts opcodes, not time.
func (b *InstructionBudget) Deadline() (time.Time, bool) { return time.Time{}, false }

// Value always returns nil.
func (b *InstructionBudget) Value(any) any { return nil }

// Reset rearms the budget to its full limit for the next execution.
func (b *InstructionBudget) Reset() {
	b.remaining = b.limit
	if b.exhausted {
		b.exhausted = false
		b.done = make(chan struct{})
	}
}

// NewSandboxedState creates a GopherLua LState with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//   - Execution limited to at most instLimit Lua opcodes per call via the
//     returned budget, which the caller must Reset before each execution
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState ready for DoFile.
// The caller owns the LState and must call L.Close() when done.
func NewSandboxedState(instLimit int) (*lua.LState, *InstructionBudget) {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	// Open only safe standard libraries.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Strip dangerous globals left by OpenBase.
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	budget := newInstructionBudget(int64(limit))
	L.SetContext(budget)

	return L, budget
}
