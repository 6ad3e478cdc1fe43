package ai

import (
	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/combat"
	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/game/grid"
)

// CombatantView captures one participant's decision-relevant state at
// scoring time. Views are plain data; building them never mutates the
// encounter.
type CombatantView struct {
	ID             string
	Faction        actor.Faction
	Pos            grid.Point
	Health         int
	MaxHealth      int
	Down           bool
	DebuffCount    int
	HealerOrCaster bool
}

// HealthFraction returns current health as a fraction of max; 0 if max is 0.
func (c *CombatantView) HealthFraction() float64 {
	if c.MaxHealth <= 0 {
		return 0
	}
	return float64(c.Health) / float64(c.MaxHealth)
}

// Snapshot is the read-only projection of an encounter the scoring
// functions operate on.
//
// Invariant: Actor is one of the encounter's participants and is able to
// act.
type Snapshot struct {
	Actor      *actor.Participant
	Combatants []*CombatantView
}

// BuildSnapshot projects enc into plain view data for the given actor.
//
// Precondition: actorID names a participant of enc.
func BuildSnapshot(enc *combat.Encounter, actorID string) (*Snapshot, bool) {
	self, ok := enc.Participant(actorID)
	if !ok {
		return nil, false
	}
	s := &Snapshot{Actor: self}
	for _, p := range enc.Participants() {
		view := &CombatantView{
			ID:        p.ID,
			Faction:   p.Faction,
			Pos:       p.Pos,
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			Down:      p.IsDown(),
		}
		for _, inst := range p.Effects.All() {
			switch inst.Def.Kind() {
			case effect.KindDebuff, effect.KindDamageOverTime:
				view.DebuffCount++
			}
		}
		// Intellect-heavy participants read as healers/casters and are
		// priority targets regardless of immediate threat.
		attrs := p.EffectiveAttributes()
		view.HealerOrCaster = attrs.Intellect > attrs.Might
		s.Combatants = append(s.Combatants, view)
	}
	return s, true
}

// Enemies returns all living combatants hostile to the actor.
func (s *Snapshot) Enemies() []*CombatantView {
	var out []*CombatantView
	for _, c := range s.Combatants {
		if !c.Down && !s.Actor.Faction.AlliedWith(c.Faction) {
			out = append(out, c)
		}
	}
	return out
}

// Allies returns all living combatants allied with the actor, including the
// actor itself.
func (s *Snapshot) Allies() []*CombatantView {
	var out []*CombatantView
	for _, c := range s.Combatants {
		if !c.Down && s.Actor.Faction.AlliedWith(c.Faction) {
			out = append(out, c)
		}
	}
	return out
}

// NearestEnemy returns the living enemy closest to the actor, ties broken
// by Combatants order; nil when none remain.
func (s *Snapshot) NearestEnemy() *CombatantView {
	var nearest *CombatantView
	best := 0
	for _, e := range s.Enemies() {
		d := grid.Distance(s.Actor.Pos, e.Pos)
		if nearest == nil || d < best {
			nearest, best = e, d
		}
	}
	return nearest
}

// Isolation returns how far c stands from its nearest living ally, in
// cells. A combatant with no living allies counts as fully isolated.
func (s *Snapshot) Isolation(c *CombatantView) int {
	const alone = 99
	best := alone
	for _, other := range s.Combatants {
		if other.Down || other.ID == c.ID {
			continue
		}
		if !sameSide(c.Faction, other.Faction) {
			continue
		}
		if d := grid.Distance(c.Pos, other.Pos); d < best {
			best = d
		}
	}
	return best
}

// ClusterSize returns the number of living enemies of the actor within
// radius cells of center, center's occupant included.
func (s *Snapshot) ClusterSize(center grid.Point, radius int) int {
	n := 0
	for _, e := range s.Enemies() {
		if grid.Distance(center, e.Pos) <= radius {
			n++
		}
	}
	return n
}

func sameSide(a, b actor.Faction) bool {
	return a.AlliedWith(b)
}

// Vulnerability scores how attractive c is as a target: wounded targets
// first, debuffed targets next, healers/casters weighted up, isolated
// targets favored. The profile's TargetVulnerability weight scales the
// health component.
func (s *Snapshot) Vulnerability(c *CombatantView, p *Profile) float64 {
	score := (1 - c.HealthFraction()) * p.TargetVulnerability
	score += float64(c.DebuffCount) * 0.15
	if c.HealerOrCaster {
		score += 0.5
	}
	if s.Isolation(c) >= 3 {
		score += 0.25
	}
	return score
}
