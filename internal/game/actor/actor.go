// Package actor defines the Participant model: a combatant's attributes,
// resources, position, active effects, and cooldowns. Participants are owned
// by the encounter that contains them and are mutated only through the combat
// resolution and effect engines.
package actor

import (
	"fmt"

	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/game/grid"
)

// Faction identifies which side a participant fights for. Player and Ally
// are mutually allied against Enemy.
type Faction int

const (
	FactionPlayer Faction = iota
	FactionAlly
	FactionEnemy
)

// String returns a human-readable faction label.
func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "player"
	case FactionAlly:
		return "ally"
	case FactionEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// AlliedWith reports whether f and other fight on the same side.
//
// Postcondition: AlliedWith is symmetric and reflexive.
func (f Faction) AlliedWith(other Faction) bool {
	if f == other {
		return true
	}
	return f != FactionEnemy && other != FactionEnemy
}

// Control distinguishes caller-driven participants from AI-driven ones.
type Control int

const (
	ControlPlayer Control = iota
	ControlAI
)

// Attributes are the four primary stats every participant carries.
type Attributes struct {
	Might     int
	Intellect int
	Will      int
	Shadow    int
}

// Add returns a with the given deltas applied, flooring each attribute at 0.
func (a Attributes) Add(might, intellect, will, shadow int) Attributes {
	return Attributes{
		Might:     floor0(a.Might + might),
		Intellect: floor0(a.Intellect + intellect),
		Will:      floor0(a.Will + will),
		Shadow:    floor0(a.Shadow + shadow),
	}
}

func floor0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Participant represents one combatant in an encounter.
//
// Invariant: 0 <= Health <= MaxHealth; 0 <= Mana <= MaxMana;
// 0 <= AP <= MaxAP; 0 <= Corruption <= 100.
type Participant struct {
	ID      string
	Name    string
	Faction Faction
	Level   int

	// Attr holds base attributes with equipment bonuses already resolved in
	// (the engine never queries the equipment system itself).
	Attr Attributes

	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int
	AP        int
	MaxAP     int

	// Armor is the resolved base armor total (equipment included).
	Armor int
	// InitiativeBonus is the resolved equipment initiative total.
	InitiativeBonus int
	// MoveSpeed is the number of cells one AP of movement buys.
	MoveSpeed int

	Pos grid.Point

	// Effects is the participant's active status effect set.
	Effects *effect.ActiveSet
	// Cooldowns maps ability id to rounds remaining before reuse.
	Cooldowns map[string]int

	// Corruption is the 0-100 scalar gating shadow abilities.
	Corruption int

	Control   Control
	ProfileID string
}

// Validate checks the invariants a participant must satisfy before entering
// an encounter.
func (p *Participant) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("actor: participant ID must not be empty")
	}
	if p.MaxHealth <= 0 {
		return fmt.Errorf("actor: participant %q has zero max health", p.ID)
	}
	if p.MaxAP <= 0 {
		return fmt.Errorf("actor: participant %q has zero max action points", p.ID)
	}
	if p.Corruption < 0 || p.Corruption > 100 {
		return fmt.Errorf("actor: participant %q corruption %d out of [0,100]", p.ID, p.Corruption)
	}
	if p.Control == ControlAI && p.ProfileID == "" {
		return fmt.Errorf("actor: AI participant %q has no profile", p.ID)
	}
	return nil
}

// EffectiveAttributes returns Attr with active effect deltas applied.
func (p *Participant) EffectiveAttributes() Attributes {
	if p.Effects == nil {
		return p.Attr
	}
	m, i, w, s := effect.AttributeDeltas(p.Effects)
	return p.Attr.Add(m, i, w, s)
}

// IsIncapacitated reports whether the participant cannot take a turn:
// at zero health or stunned.
func (p *Participant) IsIncapacitated() bool {
	if p.Health <= 0 {
		return true
	}
	return p.Effects != nil && effect.IsStunned(p.Effects)
}

// IsDown reports whether the participant is at zero health. Terminal-state
// evaluation counts downed participants, not merely stunned ones.
func (p *Participant) IsDown() bool { return p.Health <= 0 }

// HealthFraction returns Health / MaxHealth in [0, 1].
func (p *Participant) HealthFraction() float64 {
	if p.MaxHealth <= 0 {
		return 0
	}
	return float64(p.Health) / float64(p.MaxHealth)
}

// ApplyDamage reduces Health by amount, flooring at zero, and returns the
// damage actually dealt.
//
// Precondition: amount >= 0.
// Postcondition: Health >= 0; return value == old Health - new Health.
func (p *Participant) ApplyDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	dealt := amount
	if dealt > p.Health {
		dealt = p.Health
	}
	p.Health -= dealt
	return dealt
}

// ApplyHealing raises Health by amount, capping at MaxHealth, and returns
// the amount actually restored. A downed participant can be healed back up.
//
// Precondition: amount >= 0.
// Postcondition: Health <= MaxHealth; return value == new Health - old Health.
func (p *Participant) ApplyHealing(amount int) int {
	if amount < 0 {
		amount = 0
	}
	restored := amount
	if p.Health+restored > p.MaxHealth {
		restored = p.MaxHealth - p.Health
	}
	p.Health += restored
	return restored
}

// SpendMana deducts amount from Mana. Returns false (and leaves Mana
// untouched) when the pool is insufficient.
//
// Postcondition: Mana >= 0.
func (p *Participant) SpendMana(amount int) bool {
	if amount > p.Mana {
		return false
	}
	p.Mana -= amount
	return true
}

// SpendAP deducts amount from AP. Returns false (and leaves AP untouched)
// when the budget is insufficient.
//
// Postcondition: AP >= 0.
func (p *Participant) SpendAP(amount int) bool {
	if amount > p.AP {
		return false
	}
	p.AP -= amount
	return true
}

// RestoreAP resets the per-turn action point budget to MaxAP.
func (p *Participant) RestoreAP() {
	p.AP = p.MaxAP
}

// AddCorruption moves Corruption by delta, clamped to [0, 100].
func (p *Participant) AddCorruption(delta int) {
	p.Corruption += delta
	if p.Corruption < 0 {
		p.Corruption = 0
	}
	if p.Corruption > 100 {
		p.Corruption = 100
	}
}

// OnCooldown reports whether abilityID has rounds remaining before reuse.
func (p *Participant) OnCooldown(abilityID string) bool {
	return p.Cooldowns[abilityID] > 0
}

// SetCooldown records rounds remaining for abilityID. rounds <= 0 clears it.
func (p *Participant) SetCooldown(abilityID string, rounds int) {
	if p.Cooldowns == nil {
		p.Cooldowns = make(map[string]int)
	}
	if rounds <= 0 {
		delete(p.Cooldowns, abilityID)
		return
	}
	p.Cooldowns[abilityID] = rounds
}

// TickCooldowns decrements every cooldown by one round, dropping entries
// that reach zero.
func (p *Participant) TickCooldowns() {
	for id, rounds := range p.Cooldowns {
		if rounds <= 1 {
			delete(p.Cooldowns, id)
			continue
		}
		p.Cooldowns[id] = rounds - 1
	}
}
