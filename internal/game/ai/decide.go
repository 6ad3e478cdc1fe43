package ai

import (
	"fmt"
	"sort"

	"github.com/duskfall/engine/internal/game/ability"
	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/combat"
	"github.com/duskfall/engine/internal/game/dice"
	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/game/grid"
)

// DefaultTopK is the sampling pool size used when the caller does not
// configure one.
const DefaultTopK = 3

// Candidate pairs a legal action with its personality-weighted score.
type Candidate struct {
	Spec  combat.ActionSpec
	Score float64
}

// Engine scores candidate actions for AI-controlled participants. It holds
// only immutable reference data and a randomness source; every Decide call
// is a pure function of the encounter snapshot, the profile, and the
// difficulty parameter.
//
// Invariant: profiles and src must not be nil.
type Engine struct {
	profiles *Registry
	src      dice.Source
	topK     int
}

// NewEngine constructs an Engine.
//
// Precondition: profiles and src must not be nil; topK <= 0 selects
// DefaultTopK.
func NewEngine(profiles *Registry, src dice.Source, topK int) *Engine {
	if profiles == nil {
		panic("ai.NewEngine: profiles must not be nil")
	}
	if src == nil {
		panic("ai.NewEngine: src must not be nil")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{profiles: profiles, src: src, topK: topK}
}

// Decide chooses an action for actorID at difficulty d in [0,1]: with
// probability d the highest-scored candidate, otherwise a score-weighted
// draw from the top-k. Wait is always a candidate, so Decide always returns
// a legal action.
//
// Precondition: actorID names a participant of enc with a registered
// profile.
func (e *Engine) Decide(enc *combat.Encounter, actorID string, d float64) (combat.ActionSpec, error) {
	snap, ok := BuildSnapshot(enc, actorID)
	if !ok {
		return combat.ActionSpec{}, fmt.Errorf("ai: unknown actor %q", actorID)
	}
	profile, ok := e.profiles.Get(snap.Actor.ProfileID)
	if !ok {
		return combat.ActionSpec{}, fmt.Errorf("ai: actor %q references unknown profile %q", actorID, snap.Actor.ProfileID)
	}

	candidates := e.generate(enc, snap, profile)
	return e.pick(candidates, d), nil
}

// Candidates exposes the scored candidate list for inspection; the
// simulation driver logs it at debug level.
func (e *Engine) Candidates(enc *combat.Encounter, actorID string) ([]Candidate, error) {
	snap, ok := BuildSnapshot(enc, actorID)
	if !ok {
		return nil, fmt.Errorf("ai: unknown actor %q", actorID)
	}
	profile, ok := e.profiles.Get(snap.Actor.ProfileID)
	if !ok {
		return nil, fmt.Errorf("ai: actor %q references unknown profile %q", actorID, snap.Actor.ProfileID)
	}
	return e.generate(enc, snap, profile), nil
}

// generate enumerates every affordable, targetable action this turn and
// scores each one. The result is sorted best-first; ties keep generation
// order so equal-score decisions stay deterministic.
func (e *Engine) generate(enc *combat.Encounter, snap *Snapshot, profile *Profile) []Candidate {
	self := snap.Actor
	health := self.HealthFraction()
	retreating := health < profile.RetreatThreshold

	// Aggressive candidates scale with the risk term: a high-tolerance
	// profile stays dangerous while hurt, a cautious one shuts down.
	aggression := health + (1-health)*profile.RiskTolerance
	defense := 1.0
	if retreating {
		defense = 2
	}

	out := []Candidate{{
		Spec:  combat.ActionSpec{ActorID: self.ID, Type: combat.ActionWait},
		Score: 0.05,
	}}

	if self.AP >= 1 {
		eff := float64(enc.Tuning().DefendArmorBonus) * 2
		out = append(out, Candidate{
			Spec:  combat.ActionSpec{ActorID: self.ID, Type: combat.ActionDefend},
			Score: eff * profile.Defense * (1 - health + 0.1) * defense,
		})
	}

	for _, def := range enc.Abilities().All() {
		if !e.affordable(self, def) {
			continue
		}
		out = append(out, e.abilityCandidates(enc, snap, profile, def, aggression, defense)...)
	}

	out = append(out, e.moveCandidates(enc, snap, profile, defense)...)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// affordable applies the same gates the resolver checks first: silence,
// corruption, cooldown, AP, and mana. Filtering here keeps rejected
// submissions out of the happy path.
func (e *Engine) affordable(self *actor.Participant, def *ability.Definition) bool {
	if def.Category().BlockedBySilence() && effect.IsSilenced(self.Effects) {
		return false
	}
	if def.CorruptionRequired > 0 && !self.MeetsCorruption(def.CorruptionRequired) {
		return false
	}
	if self.OnCooldown(def.ID) {
		return false
	}
	return self.AP >= def.APCost && self.Mana >= def.ManaCost
}

func (e *Engine) abilityCandidates(enc *combat.Encounter, snap *Snapshot, profile *Profile, def *ability.Definition, aggression, defense float64) []Candidate {
	self := snap.Actor
	var out []Candidate

	if def.Heals || def.Dispels {
		for _, ally := range snap.Allies() {
			if grid.Distance(self.Pos, ally.Pos) > def.Range {
				continue
			}
			eff := 0.0
			if def.Heals {
				missing := float64(ally.MaxHealth - ally.Health)
				power := float64(e.expectedPower(enc, self, def))
				if power < missing {
					eff = power
				} else {
					eff = missing
				}
			}
			if def.Dispels {
				eff += float64(ally.DebuffCount) * 5
			}
			if eff <= 0 {
				continue
			}
			out = append(out, Candidate{
				Spec:  combat.ActionSpec{ActorID: self.ID, Type: combat.ActionAbility, AbilityID: def.ID, TargetID: ally.ID},
				Score: eff * profile.Heal * defense,
			})
		}
		return out
	}

	if !def.IsArea() {
		for _, enemy := range snap.Enemies() {
			if grid.Distance(self.Pos, enemy.Pos) > def.Range {
				continue
			}
			eff := e.expectedDamage(enc, self, def, enemy.ID)
			score := eff * profile.Attack * aggression * (1 + snap.Vulnerability(enemy, profile))
			if len(def.AppliesEffects) > 0 {
				score += float64(len(def.AppliesEffects)) * 3 * profile.Buff
			}
			out = append(out, Candidate{
				Spec:  combat.ActionSpec{ActorID: self.ID, Type: combat.ActionAbility, AbilityID: def.ID, TargetID: enemy.ID},
				Score: score,
			})
		}
		return out
	}

	// Area abilities: anchor on each enemy's cell and value the whole
	// affected set. Allies caught in a non-safe area count against it.
	for _, enemy := range snap.Enemies() {
		anchor := enemy.Pos
		switch def.Shape().Kind {
		case grid.ShapeCircle:
			if grid.Distance(self.Pos, anchor) > def.Range {
				continue
			}
		default:
			if anchor == self.Pos {
				continue
			}
		}
		eff := 0.0
		for _, cell := range def.Shape().Cells(self.Pos, anchor) {
			occ := enc.OccupantAt(cell)
			if occ == nil || occ.IsDown() {
				continue
			}
			dmg := e.expectedDamage(enc, self, def, occ.ID)
			if self.Faction.AlliedWith(occ.Faction) {
				if def.AllySafe {
					continue
				}
				eff -= dmg * 1.5
				continue
			}
			eff += dmg
		}
		if eff <= 0 {
			continue
		}
		cell := anchor
		out = append(out, Candidate{
			Spec:  combat.ActionSpec{ActorID: self.ID, Type: combat.ActionAbility, AbilityID: def.ID, TargetCell: &cell},
			Score: eff * profile.Attack * aggression * profile.AreaPreference,
		})
	}
	return out
}

// moveCandidates proposes at most three destinations: the reachable cell
// nearest the closest enemy, the one farthest from all enemies, and one
// closing on the most isolated enemy.
func (e *Engine) moveCandidates(enc *combat.Encounter, snap *Snapshot, profile *Profile, defense float64) []Candidate {
	self := snap.Actor
	budget := self.MovementBudget()
	if budget <= 0 {
		return nil
	}
	enemies := snap.Enemies()
	if len(enemies) == 0 {
		return nil
	}
	blocked := func(cell grid.Point) bool {
		occ := enc.OccupantAt(cell)
		return occ != nil && occ.ID != self.ID
	}
	reachable := enc.Terrain.Reachable(self.Pos, budget, blocked)
	if len(reachable) == 0 {
		return nil
	}

	nearest := snap.NearestEnemy()
	isolated := enemies[0]
	for _, en := range enemies[1:] {
		if snap.Isolation(en) > snap.Isolation(isolated) {
			isolated = en
		}
	}

	type goal struct {
		dest    grid.Point
		gain    float64
		defense bool
	}
	var goals []goal

	if dest, ok := closestCellTo(reachable, nearest.Pos); ok {
		gain := float64(grid.Distance(self.Pos, nearest.Pos) - grid.Distance(dest, nearest.Pos))
		goals = append(goals, goal{dest: dest, gain: gain})
	}
	if dest, ok := farthestCellFrom(reachable, enemies); ok {
		gain := minEnemyDistance(dest, enemies) - minEnemyDistance(self.Pos, enemies)
		goals = append(goals, goal{dest: dest, gain: gain, defense: true})
	}
	if isolated != nearest {
		if dest, ok := closestCellTo(reachable, isolated.Pos); ok {
			gain := float64(grid.Distance(self.Pos, isolated.Pos) - grid.Distance(dest, isolated.Pos))
			goals = append(goals, goal{dest: dest, gain: gain})
		}
	}

	var out []Candidate
	seen := make(map[grid.Point]bool)
	for _, g := range goals {
		if g.gain <= 0 || seen[g.dest] {
			continue
		}
		seen[g.dest] = true
		score := g.gain * profile.Positioning
		if g.defense {
			score *= defense
		}
		dest := g.dest
		out = append(out, Candidate{
			Spec:  combat.ActionSpec{ActorID: self.ID, Type: combat.ActionMove, TargetCell: &dest},
			Score: score,
		})
	}
	return out
}

func closestCellTo(reachable map[grid.Point]int, target grid.Point) (grid.Point, bool) {
	var best grid.Point
	bestDist := -1
	for cell := range reachable {
		d := grid.Distance(cell, target)
		if bestDist < 0 || d < bestDist || (d == bestDist && lessPoint(cell, best)) {
			best, bestDist = cell, d
		}
	}
	return best, bestDist >= 0
}

func farthestCellFrom(reachable map[grid.Point]int, enemies []*CombatantView) (grid.Point, bool) {
	var best grid.Point
	bestDist := -1.0
	for cell := range reachable {
		d := minEnemyDistance(cell, enemies)
		if d > bestDist || (d == bestDist && lessPoint(cell, best)) {
			best, bestDist = cell, d
		}
	}
	return best, bestDist >= 0
}

func minEnemyDistance(cell grid.Point, enemies []*CombatantView) float64 {
	best := -1
	for _, en := range enemies {
		d := grid.Distance(cell, en.Pos)
		if best < 0 || d < best {
			best = d
		}
	}
	return float64(best)
}

// lessPoint gives map iteration a stable tie-break.
func lessPoint(a, b grid.Point) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// expectedPower mirrors the resolver's pre-mitigation power formula without
// variance; the AI plans on expected values.
func (e *Engine) expectedPower(enc *combat.Encounter, self *actor.Participant, def *ability.Definition) int {
	t := enc.Tuning()
	attrs := self.EffectiveAttributes()
	power := float64(def.BasePower) +
		float64(def.Primary.Attr().Value(attrs))*def.Primary.Weight +
		float64(def.Secondary.Attr().Value(attrs))*def.Secondary.Weight*t.SecondaryScale +
		float64(self.Level)*t.LevelFactor
	if def.Category() == ability.CategoryShadow {
		power += float64(self.CorruptionPowerBonus())
	}
	if power < 0 {
		return 0
	}
	return int(power)
}

func (e *Engine) expectedDamage(enc *combat.Encounter, self *actor.Participant, def *ability.Definition, targetID string) float64 {
	target, ok := enc.Participant(targetID)
	if !ok {
		return 0
	}
	power := e.expectedPower(enc, self, def)
	var mit int
	switch def.Category() {
	case ability.CategoryPhysical:
		mit = target.PhysicalResistance()
	case ability.CategoryMagical:
		mit = target.MagicalResistance()
	case ability.CategoryShadow:
		mit = target.ShadowResistance()
	case ability.CategoryHybrid:
		phys, mag := target.PhysicalResistance(), target.MagicalResistance()
		mit = phys
		if mag < phys {
			mit = mag
		}
	case ability.CategoryUtility:
		return 0
	}
	dmg := power - mit
	if dmg < enc.Tuning().MinConnectingDamage {
		dmg = enc.Tuning().MinConnectingDamage
	}
	return float64(dmg)
}

// pick selects from the sorted candidate list: with probability d the
// argmax, otherwise a score-weighted draw from the top-k.
//
// Precondition: candidates is non-empty and sorted best-first.
func (e *Engine) pick(candidates []Candidate, d float64) combat.ActionSpec {
	if len(candidates) == 1 {
		return candidates[0].Spec
	}
	if d >= 1 || dice.Float64(e.src) < d {
		return candidates[0].Spec
	}

	k := e.topK
	if k > len(candidates) {
		k = len(candidates)
	}
	pool := candidates[:k]
	total := 0.0
	for _, c := range pool {
		if c.Score > 0 {
			total += c.Score
		}
	}
	if total <= 0 {
		return pool[0].Spec
	}
	draw := dice.Float64(e.src) * total
	for _, c := range pool {
		if c.Score <= 0 {
			continue
		}
		draw -= c.Score
		if draw <= 0 {
			return c.Spec
		}
	}
	return pool[k-1].Spec
}
