package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/scripting"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestRunnerAdjustMagnitude(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hooks.lua", `
function empower(effect_id, owner_id, stacks, magnitude)
    return stacks * 2
end
function broken(effect_id, owner_id, stacks, magnitude)
    error("boom")
end
function wrong_type(effect_id, owner_id, stacks, magnitude)
    return "not a number"
end
`)

	r := scripting.NewRunner(zap.NewNop())
	defer r.Close()
	require.NoError(t, r.LoadDirectory(dir, 0))

	assert.Equal(t, 6, r.AdjustMagnitude("empower", "ember", "p1", 3, 4))
	assert.Equal(t, 0, r.AdjustMagnitude("missing", "ember", "p1", 3, 4), "absent hook adjusts nothing")
	assert.Equal(t, 0, r.AdjustMagnitude("broken", "ember", "p1", 3, 4), "failing hook adjusts nothing")
	assert.Equal(t, 0, r.AdjustMagnitude("wrong_type", "ember", "p1", 3, 4))
}

func TestRunnerNotify(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hooks.lua", `
expired = {}
function on_expire(effect_id, owner_id)
    expired[#expired + 1] = effect_id
end
`)

	r := scripting.NewRunner(zap.NewNop())
	defer r.Close()
	require.NoError(t, r.LoadDirectory(dir, 0))

	// Absent hooks and side-effect hooks both complete without error.
	r.Notify("on_expire", "ember", "p1")
	r.Notify("missing", "ember", "p1")
}

func TestRunnerLoadFailureKeepsOldVM(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "good.lua", `function halve(e, o, s, m) return -(m / 2) end`)

	r := scripting.NewRunner(zap.NewNop())
	defer r.Close()
	require.NoError(t, r.LoadDirectory(dir, 0))
	require.Equal(t, -2, r.AdjustMagnitude("halve", "x", "p", 1, 4))

	bad := t.TempDir()
	writeScript(t, bad, "bad.lua", `this is not lua`)
	assert.Error(t, r.LoadDirectory(bad, 0))
	assert.Equal(t, -2, r.AdjustMagnitude("halve", "x", "p", 1, 4), "previous VM must survive a failed load")
}

// The Runner satisfies the effect engine's hook contract end to end: an
// on-apply hook adjusts the created instance's magnitude.
func TestRunnerDrivesEffectHooks(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hooks.lua", `
function ember_apply(effect_id, owner_id, stacks, magnitude)
    return 3
end
`)
	r := scripting.NewRunner(zap.NewNop())
	defer r.Close()
	require.NoError(t, r.LoadDirectory(dir, 0))

	def := &effect.Definition{
		ID: "ember", KindName: "damage_over_time", PolicyName: "refresh",
		Magnitude: 4, Duration: 2, LuaOnApply: "ember_apply",
	}
	require.NoError(t, def.Validate())

	set := effect.NewActiveSet("p1", r)
	_, err := set.Apply(def, "caster")
	require.NoError(t, err)
	inst, ok := set.Get("ember")
	require.True(t, ok)
	assert.Equal(t, 7, inst.Magnitude)
}

// A hook that blows the instruction limit must fail alone: the budget is
// rearmed per call, so later hooks on the same VM still run.
func TestRunnerRunawayHookDoesNotPoisonLaterCalls(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hooks.lua", `
function runaway(effect_id, owner_id, stacks, magnitude)
    while true do end
end
function tame(effect_id, owner_id, stacks, magnitude)
    return stacks
end
`)

	r := scripting.NewRunner(zap.NewNop())
	defer r.Close()
	require.NoError(t, r.LoadDirectory(dir, 500))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 0, r.AdjustMagnitude("runaway", "ember", "p1", 2, 4))
		assert.Equal(t, 2, r.AdjustMagnitude("tame", "ember", "p1", 2, 4), "budget must rearm after an aborted hook")
	}
}
