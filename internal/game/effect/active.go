package effect

import (
	"fmt"
	"sort"
)

// Instance tracks one applied effect on a participant.
type Instance struct {
	Def       *Definition
	Stacks    int
	Remaining int // rounds left; -1 = permanent
	Magnitude int // per-stack per-round amount, after apply-hook adjustment
	// SourceID records who applied the effect, for dispel/cleanse attribution.
	SourceID string

	seq int // application order, for stable tick ordering
}

// ApplyOutcome describes what Apply did.
type ApplyOutcome int

const (
	// ApplyCreated: a new instance was attached.
	ApplyCreated ApplyOutcome = iota
	// ApplyStacked: an existing independent instance gained a stack.
	ApplyStacked
	// ApplyRefreshed: duration (and possibly magnitude) was refreshed.
	ApplyRefreshed
	// ApplyIgnored: the stacking policy discarded the reapplication.
	ApplyIgnored
	// ApplyImmune: the target is immune to the effect kind; nothing attached.
	ApplyImmune
)

// HookRunner evaluates the Lua hooks named by effect definitions. A nil
// runner disables hooks. Hook failures never surface as errors; a failing
// or absent hook contributes no adjustment.
type HookRunner interface {
	// AdjustMagnitude calls the named hook and returns an additive magnitude
	// adjustment; 0 when the hook is absent or fails.
	AdjustMagnitude(hook, effectID, ownerID string, stacks, magnitude int) int
	// Notify calls the named hook for its side effects only.
	Notify(hook, effectID, ownerID string)
}

// TickEvent records what one effect instance did during a round tick.
type TickEvent struct {
	EffectID string
	Kind     Kind
	// Amount is the total per-round amount (magnitude x stacks, plus any
	// tick-hook adjustment). Damage for DoT, healing for HoT, corruption
	// delta for corruption effects; 0 for buffs/debuffs.
	Amount  int
	Stacks  int
	Expired bool
}

// ActiveSet tracks all effects currently applied to one participant.
// It is not safe for concurrent use; the turn controller serialises access.
type ActiveSet struct {
	ownerID   string
	instances map[string]*Instance
	hooks     HookRunner
	nextSeq   int
}

// NewActiveSet creates an empty ActiveSet for the given owner. hooks may be
// nil.
func NewActiveSet(ownerID string, hooks HookRunner) *ActiveSet {
	return &ActiveSet{
		ownerID:   ownerID,
		instances: make(map[string]*Instance),
		hooks:     hooks,
	}
}

// SetHooks installs a hook runner after construction. Used by the session
// layer, which owns the scripting VM.
func (s *ActiveSet) SetHooks(hooks HookRunner) {
	s.hooks = hooks
}

// Apply attaches def to the owner, applying the definition's stacking policy
// when an instance of the same effect is already present. An immune target
// rejects the application silently (ApplyImmune, no error): immunity is a
// combat outcome, not a caller mistake.
//
// Precondition: def must not be nil and must have passed Validate.
// Postcondition: on ApplyCreated/ApplyStacked/ApplyRefreshed, Has(def.ID) is
// true; on ApplyImmune nothing changed.
func (s *ActiveSet) Apply(def *Definition, sourceID string) (ApplyOutcome, error) {
	if def == nil {
		return ApplyIgnored, fmt.Errorf("effect.Apply: def must not be nil")
	}
	if s.ImmuneTo(def.Kind()) {
		return ApplyImmune, nil
	}

	if existing, ok := s.instances[def.ID]; ok {
		switch def.Policy() {
		case StackNone:
			return ApplyIgnored, nil
		case StackRefresh:
			if def.Duration == -1 || existing.Remaining == -1 {
				existing.Remaining = -1
			} else {
				existing.Remaining = def.Duration
			}
			if def.Magnitude > existing.Magnitude {
				existing.Magnitude = def.Magnitude
			}
			existing.SourceID = sourceID
			return ApplyRefreshed, nil
		default: // StackIndependent
			cap := def.MaxStacks
			if cap <= 0 {
				cap = 1
			}
			refresh := func() {
				if def.Duration == -1 || existing.Remaining == -1 {
					existing.Remaining = -1
				} else if def.Duration > existing.Remaining {
					existing.Remaining = def.Duration
				}
			}
			if existing.Stacks >= cap {
				// At the stack cap a reapplication still refreshes duration.
				refresh()
				return ApplyRefreshed, nil
			}
			existing.Stacks++
			refresh()
			return ApplyStacked, nil
		}
	}

	magnitude := def.Magnitude
	if s.hooks != nil && def.LuaOnApply != "" {
		magnitude += s.hooks.AdjustMagnitude(def.LuaOnApply, def.ID, s.ownerID, 1, magnitude)
	}
	s.instances[def.ID] = &Instance{
		Def:       def,
		Stacks:    1,
		Remaining: def.Duration,
		Magnitude: magnitude,
		SourceID:  sourceID,
		seq:       s.nextSeq,
	}
	s.nextSeq++
	return ApplyCreated, nil
}

// Tick processes one round boundary for the owner: damage-over-time first,
// then heal-over-time, then everything else, stable by application order
// within each class. Each instance's duration drops by one; instances
// reaching zero are removed (and their expire hooks fired).
//
// Postcondition: the returned events are in resolution order; every event
// with Expired true refers to an instance no longer in the set.
func (s *ActiveSet) Tick() []TickEvent {
	ordered := s.orderedInstances()
	events := make([]TickEvent, 0, len(ordered))
	for _, inst := range ordered {
		amount := 0
		switch inst.Def.Kind() {
		case KindDamageOverTime, KindHealOverTime, KindCorruption:
			amount = inst.Magnitude * inst.Stacks
			if s.hooks != nil && inst.Def.LuaOnTick != "" {
				amount += s.hooks.AdjustMagnitude(inst.Def.LuaOnTick, inst.Def.ID, s.ownerID, inst.Stacks, amount)
			}
		}

		expired := false
		if inst.Remaining > 0 {
			inst.Remaining--
			if inst.Remaining == 0 {
				expired = true
				delete(s.instances, inst.Def.ID)
				if s.hooks != nil && inst.Def.LuaOnExpire != "" {
					s.hooks.Notify(inst.Def.LuaOnExpire, inst.Def.ID, s.ownerID)
				}
			}
		}

		events = append(events, TickEvent{
			EffectID: inst.Def.ID,
			Kind:     inst.Def.Kind(),
			Amount:   amount,
			Stacks:   inst.Stacks,
			Expired:  expired,
		})
	}
	return events
}

// Dispel removes every dispellable instance matching pred and returns the
// removed effect IDs in application order. Effects with Dispellable false
// are exempt regardless of pred. pred may be nil to match everything.
func (s *ActiveSet) Dispel(pred func(*Instance) bool) []string {
	if pred == nil {
		pred = func(*Instance) bool { return true }
	}
	var removed []string
	for _, inst := range s.orderedInstances() {
		if !inst.Def.Dispellable {
			continue
		}
		if !pred(inst) {
			continue
		}
		delete(s.instances, inst.Def.ID)
		removed = append(removed, inst.Def.ID)
		if s.hooks != nil && inst.Def.LuaOnExpire != "" {
			s.hooks.Notify(inst.Def.LuaOnExpire, inst.Def.ID, s.ownerID)
		}
	}
	return removed
}

// Remove deletes the instance with the given effect ID, bypassing the
// dispellable flag. No-op if absent.
func (s *ActiveSet) Remove(id string) {
	delete(s.instances, id)
}

// Has reports whether the effect with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.instances[id]
	return ok
}

// Stacks returns the current stack count for effect id, or 0 if not present.
func (s *ActiveSet) Stacks(id string) int {
	if inst, ok := s.instances[id]; ok {
		return inst.Stacks
	}
	return 0
}

// Get returns the active instance for id, or (nil, false).
func (s *ActiveSet) Get(id string) (*Instance, bool) {
	inst, ok := s.instances[id]
	return inst, ok
}

// ImmuneTo reports whether any active effect grants immunity to kind.
func (s *ActiveSet) ImmuneTo(kind Kind) bool {
	for _, inst := range s.instances {
		for _, k := range inst.Def.ImmunityKinds() {
			if k == kind {
				return true
			}
		}
	}
	return false
}

// All returns the active instances in deterministic tick order. The slice is
// a new allocation but the pointed-to Instances are shared; callers must not
// modify them.
func (s *ActiveSet) All() []*Instance {
	return s.orderedInstances()
}

// Len returns the number of active instances.
func (s *ActiveSet) Len() int { return len(s.instances) }

// orderedInstances returns instances sorted by tick class then application
// order.
func (s *ActiveSet) orderedInstances() []*Instance {
	out := make([]*Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].Def.Kind().tickClass(), out[j].Def.Kind().tickClass()
		if ci != cj {
			return ci < cj
		}
		return out[i].seq < out[j].seq
	})
	return out
}
