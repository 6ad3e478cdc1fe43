package actor

import "github.com/duskfall/engine/internal/game/effect"

// Derived stat functions are pure: they recompute from attributes and active
// effects on every call, so there is no cached value to invalidate.

// PhysicalResistance returns the flat reduction applied to incoming physical
// damage: armor (with effect deltas) plus a Might-derived component.
//
// Postcondition: Returns >= 0.
func (p *Participant) PhysicalResistance() int {
	attrs := p.EffectiveAttributes()
	resist := p.Armor + attrs.Might/5
	if p.Effects != nil {
		resist += effect.ArmorBonus(p.Effects)
	}
	return floor0(resist)
}

// MagicalResistance returns the flat reduction applied to incoming magical
// damage, derived from Will.
//
// Postcondition: Returns >= 0.
func (p *Participant) MagicalResistance() int {
	return floor0(p.EffectiveAttributes().Will / 4)
}

// ShadowResistance returns the flat reduction applied to incoming shadow
// damage. Shadow bypasses armor and Will entirely; only explicit
// shadow-resistance effects count.
//
// Postcondition: Returns >= 0.
func (p *Participant) ShadowResistance() int {
	if p.Effects == nil {
		return 0
	}
	return floor0(effect.ShadowResistance(p.Effects))
}

// CorruptionPowerBonus returns the flat power bonus corruption grants to
// shadow-category abilities: one point per 10 corruption.
//
// Postcondition: Returns a value in [0, 10].
func (p *Participant) CorruptionPowerBonus() int {
	return p.Corruption / 10
}

// MeetsCorruption reports whether the participant's corruption is high
// enough to use an ability with the given requirement.
func (p *Participant) MeetsCorruption(required int) bool {
	return p.Corruption >= required
}

// MovementBudget returns the number of cells the participant can still move
// this turn: remaining AP times move speed. A zero MoveSpeed means the
// default of one cell per AP.
//
// Postcondition: Returns >= 0.
func (p *Participant) MovementBudget() int {
	speed := p.MoveSpeed
	if speed <= 0 {
		speed = 1
	}
	return floor0(p.AP * speed)
}
