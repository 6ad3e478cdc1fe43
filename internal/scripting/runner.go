package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Runner owns one sandboxed LState loaded with effect hook scripts and
// implements the effect package's HookRunner contract: hook evaluation
// returns magnitude adjustments and never surfaces an error into combat
// resolution.
//
// Runner is safe for concurrent use; the mutex serializes access to the
// single-threaded Lua VM.
type Runner struct {
	mu     sync.Mutex
	state  *lua.LState
	budget *InstructionBudget
	logger *zap.Logger
}

// NewRunner creates a Runner with an empty VM.
//
// Precondition: logger must be non-nil.
func NewRunner(logger *zap.Logger) *Runner {
	L, budget := NewSandboxedState(0)
	return &Runner{state: L, budget: budget, logger: logger}
}

// LoadDirectory executes every *.lua file in dir in lexicographic order,
// replacing the current VM. Hook functions are plain Lua globals. Each file
// gets a full instruction budget to run its top-level code.
//
// Precondition: dir must be a readable directory.
// Postcondition: the previous VM is closed; returns error on Lua load
// failure, leaving the previous VM in place.
func (r *Runner) LoadDirectory(dir string, instLimit int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L, budget := NewSandboxedState(instLimit)
	for _, path := range luaFiles {
		budget.Reset()
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	r.mu.Lock()
	if r.state != nil {
		r.state.Close()
	}
	r.state = L
	r.budget = budget
	r.mu.Unlock()
	return nil
}

// Close releases the VM. The Runner must not be used afterwards.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != nil {
		r.state.Close()
		r.state = nil
	}
}

// AdjustMagnitude calls the named hook as
// hook(effectID, ownerID, stacks, magnitude) and returns its numeric result
// truncated to int. An absent hook, a non-numeric result, or a Lua runtime
// error contributes no adjustment; runtime errors are logged at Warn.
func (r *Runner) AdjustMagnitude(hook, effectID, ownerID string, stacks, magnitude int) int {
	ret, ok := r.call(hook,
		lua.LString(effectID),
		lua.LString(ownerID),
		lua.LNumber(stacks),
		lua.LNumber(magnitude),
	)
	if !ok {
		return 0
	}
	if n, isNum := ret.(lua.LNumber); isNum {
		return int(n)
	}
	return 0
}

// Notify calls the named hook as hook(effectID, ownerID) for its side
// effects only.
func (r *Runner) Notify(hook, effectID, ownerID string) {
	r.call(hook, lua.LString(effectID), lua.LString(ownerID))
}

// call invokes a Lua global function, returning (result, true) on success
// and (LNil, false) when the hook is absent or fails. The instruction
// budget is rearmed per call: a hook that blows the limit aborts alone and
// leaves the VM usable for the next hook.
func (r *Runner) call(hook string, args ...lua.LValue) (lua.LValue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return lua.LNil, false
	}

	fn := r.state.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, false
	}

	r.budget.Reset()
	if err := r.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		r.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, false
	}

	ret := r.state.Get(-1)
	r.state.Pop(1)
	return ret, true
}
