package combat

import (
	"math"

	"github.com/duskfall/engine/internal/game/ability"
	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/dice"
	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/game/grid"
)

// GuardEffectID identifies the built-in 1-round armor buff the Defend
// action applies.
const GuardEffectID = "guarded"

// newGuardDef builds the Defend action's effect from tuning. It lives
// outside the content catalog so an empty effect directory cannot break the
// Defend action.
func newGuardDef(t Tuning) *effect.Definition {
	d := &effect.Definition{
		ID:         GuardEffectID,
		Name:       "Guarded",
		KindName:   "buff",
		PolicyName: "refresh",
		Duration:   1,
		ArmorDelta: t.DefendArmorBonus,
	}
	if err := d.Validate(); err != nil {
		panic("combat: built-in guard effect invalid: " + err.Error())
	}
	return d
}

// resolve validates spec against the current state and, only once every
// check has passed, applies it. A rejected action performs no mutation at
// all, which is what makes resubmission after a rejection safe.
//
// Precondition: active is the current actor and is able to act.
func (e *Encounter) resolve(active *actor.Participant, spec ActionSpec) *ActionResult {
	switch spec.Type {
	case ActionWait:
		return &ActionResult{Action: spec}

	case ActionDefend:
		if active.AP < 1 {
			return &ActionResult{Rejected: RejectInsufficientResources, Action: spec}
		}
		active.SpendAP(1)
		outcome, _ := active.Effects.Apply(e.guardDef, active.ID)
		result := &ActionResult{Action: spec}
		if outcome != effect.ApplyImmune {
			result.Targets = []TargetOutcome{{TargetID: active.ID, EffectsApplied: []string{GuardEffectID}}}
		}
		return result

	case ActionMove:
		return e.resolveMove(active, spec)

	case ActionAbility:
		return e.resolveAbility(active, spec)

	default:
		return &ActionResult{Rejected: RejectInvalidAction, Action: spec}
	}
}

// resolveMove validates destination reachability against the movement
// budget (remaining AP x move speed) and terrain cost, then relocates the
// actor and charges the AP the path cost.
func (e *Encounter) resolveMove(active *actor.Participant, spec ActionSpec) *ActionResult {
	if spec.TargetCell == nil {
		return &ActionResult{Rejected: RejectInvalidTarget, Action: spec}
	}
	dest := *spec.TargetCell
	if !e.Terrain.InBounds(dest) || e.OccupantAt(dest) != nil {
		return &ActionResult{Rejected: RejectInvalidTarget, Action: spec}
	}
	budget := active.MovementBudget()
	blocked := func(cell grid.Point) bool {
		occ := e.OccupantAt(cell)
		return occ != nil && occ.ID != active.ID
	}
	costs := e.Terrain.Reachable(active.Pos, budget, blocked)
	cost, ok := costs[dest]
	if !ok {
		return &ActionResult{Rejected: RejectUnreachable, Action: spec}
	}

	speed := active.MoveSpeed
	if speed <= 0 {
		speed = 1
	}
	apCost := (cost + speed - 1) / speed
	active.SpendAP(apCost)
	active.Pos = dest
	moved := dest
	return &ActionResult{Action: spec, MovedTo: &moved}
}

// resolveAbility runs the full validation chain for an ability use, then
// applies damage/healing, on-hit effects, and cleansing to each resolved
// target, decrements resources, and starts the cooldown.
func (e *Encounter) resolveAbility(active *actor.Participant, spec ActionSpec) *ActionResult {
	def, ok := e.abilities.Get(spec.AbilityID)
	if !ok {
		return &ActionResult{Rejected: RejectUnknownAbility, Action: spec}
	}
	if def.Category().BlockedBySilence() && effect.IsSilenced(active.Effects) {
		return &ActionResult{Rejected: RejectActorSilenced, Action: spec}
	}
	if def.CorruptionRequired > 0 && !active.MeetsCorruption(def.CorruptionRequired) {
		return &ActionResult{Rejected: RejectCorruptionRequired, Action: spec}
	}
	if active.OnCooldown(def.ID) {
		return &ActionResult{Rejected: RejectAbilityOnCooldown, Action: spec}
	}
	if active.AP < def.APCost || active.Mana < def.ManaCost {
		return &ActionResult{Rejected: RejectInsufficientResources, Action: spec}
	}

	targets, reject := e.resolveTargets(active, def, spec)
	if reject != RejectNone {
		return &ActionResult{Rejected: reject, Action: spec}
	}

	// Validation complete; mutate.
	active.SpendAP(def.APCost)
	active.SpendMana(def.ManaCost)
	if def.Cooldown > 0 {
		active.SetCooldown(def.ID, def.Cooldown)
	}

	power := e.abilityPower(active, def)
	outcomes := make([]TargetOutcome, 0, len(targets))
	for _, target := range targets {
		outcomes = append(outcomes, e.applyToTarget(active, def, target, power))
	}
	return &ActionResult{Action: spec, Targets: outcomes}
}

// resolveTargets validates targeting and returns the affected participants
// without mutating anything.
func (e *Encounter) resolveTargets(active *actor.Participant, def *ability.Definition, spec ActionSpec) ([]*actor.Participant, RejectReason) {
	if !def.IsArea() {
		if spec.TargetID == "" {
			return nil, RejectInvalidTarget
		}
		target, ok := e.byID[spec.TargetID]
		if !ok || target.IsDown() {
			return nil, RejectInvalidTarget
		}
		friendly := def.Heals || def.Dispels
		if friendly && !active.Faction.AlliedWith(target.Faction) {
			return nil, RejectInvalidTarget
		}
		if !friendly && active.Faction.AlliedWith(target.Faction) {
			return nil, RejectInvalidTarget
		}
		if grid.Distance(active.Pos, target.Pos) > def.Range {
			return nil, RejectOutOfRange
		}
		return []*actor.Participant{target}, RejectNone
	}

	anchor, reject := e.resolveAnchor(active, def, spec)
	if reject != RejectNone {
		return nil, reject
	}
	var targets []*actor.Participant
	for _, cell := range def.Shape().Cells(active.Pos, anchor) {
		occ := e.OccupantAt(cell)
		if occ == nil {
			continue
		}
		if def.AllySafe && active.Faction.AlliedWith(occ.Faction) {
			continue
		}
		targets = append(targets, occ)
	}
	return targets, RejectNone
}

// resolveAnchor finds an area ability's aim cell: the explicit cell if
// given, otherwise the named target's position. Circles are range-checked
// from the actor; cones and lines only need a direction distinct from the
// actor's own cell.
func (e *Encounter) resolveAnchor(active *actor.Participant, def *ability.Definition, spec ActionSpec) (grid.Point, RejectReason) {
	var anchor grid.Point
	switch {
	case spec.TargetCell != nil:
		anchor = *spec.TargetCell
	case spec.TargetID != "":
		target, ok := e.byID[spec.TargetID]
		if !ok || target.IsDown() {
			return grid.Point{}, RejectInvalidTarget
		}
		anchor = target.Pos
	default:
		return grid.Point{}, RejectInvalidTarget
	}
	if !e.Terrain.InBounds(anchor) {
		return grid.Point{}, RejectInvalidTarget
	}
	switch def.Shape().Kind {
	case grid.ShapeCircle, grid.ShapeSingle:
		if grid.Distance(active.Pos, anchor) > def.Range {
			return grid.Point{}, RejectOutOfRange
		}
	default:
		if anchor == active.Pos {
			return grid.Point{}, RejectInvalidTarget
		}
	}
	return anchor, RejectNone
}

// abilityPower computes the pre-mitigation power of one use:
// basePower + primary·w1 + secondary·w2·secondaryScale + level·levelFactor,
// plus active attack-effect bonuses and, for shadow abilities, the
// corruption bonus.
func (e *Encounter) abilityPower(active *actor.Participant, def *ability.Definition) int {
	attrs := active.EffectiveAttributes()
	power := float64(def.BasePower) +
		float64(def.Primary.Attr().Value(attrs))*def.Primary.Weight +
		float64(def.Secondary.Attr().Value(attrs))*def.Secondary.Weight*e.tuning.SecondaryScale +
		float64(active.Level)*e.tuning.LevelFactor
	if !def.Heals {
		power += float64(effect.AttackBonus(active.Effects))
	}
	if def.Category() == ability.CategoryShadow {
		power += float64(active.CorruptionPowerBonus())
	}
	rounded := int(math.Round(power))
	if rounded < 0 {
		return 0
	}
	return rounded
}

// mitigation returns the flat reduction target applies against def's
// category. Hybrid abilities exploit the weaker of the physical and magical
// defenses; shadow bypasses both and is cut only by explicit
// shadow-resistance effects.
func mitigation(def *ability.Definition, target *actor.Participant) int {
	switch def.Category() {
	case ability.CategoryPhysical:
		return target.PhysicalResistance()
	case ability.CategoryMagical:
		return target.MagicalResistance()
	case ability.CategoryShadow:
		return target.ShadowResistance()
	case ability.CategoryHybrid:
		phys, mag := target.PhysicalResistance(), target.MagicalResistance()
		if phys < mag {
			return phys
		}
		return mag
	default:
		return 0
	}
}

// applyToTarget applies one resolved ability use to one target: damage or
// healing with bounded variance, then on-hit effects, then cleansing for
// dispel abilities.
func (e *Encounter) applyToTarget(active *actor.Participant, def *ability.Definition, target *actor.Participant, power int) TargetOutcome {
	out := TargetOutcome{TargetID: target.ID}

	if power > 0 && def.Category() != ability.CategoryUtility {
		pct := dice.VariancePercent(e.src, e.tuning.VarianceSpread)
		if def.Heals {
			out.Healing = target.ApplyHealing(power * pct / 100)
		} else {
			dmg := power - mitigation(def, target)
			dmg = dmg * pct / 100
			if dmg < e.tuning.MinConnectingDamage {
				dmg = e.tuning.MinConnectingDamage
			}
			out.Damage = target.ApplyDamage(dmg)
			out.Downed = target.IsDown()
		}
	}

	for _, effectID := range def.AppliesEffects {
		tmpl, ok := e.effects.Get(effectID)
		if !ok {
			// Load-time validation makes this unreachable; skip defensively.
			continue
		}
		applied, err := target.Effects.Apply(tmpl, active.ID)
		if err != nil {
			continue
		}
		if applied != effect.ApplyImmune && applied != effect.ApplyIgnored {
			out.EffectsApplied = append(out.EffectsApplied, effectID)
		}
	}

	if def.Dispels {
		out.EffectsRemoved = target.Effects.Dispel(func(inst *effect.Instance) bool {
			switch inst.Def.Kind() {
			case effect.KindDebuff, effect.KindDamageOverTime, effect.KindCorruption:
				return true
			default:
				return false
			}
		})
	}

	return out
}
