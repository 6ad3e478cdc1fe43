package combat

import (
	"errors"
	"fmt"

	"github.com/duskfall/engine/internal/game/ability"
	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/dice"
	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/game/grid"
)

// ErrInvalidEncounter reports a participant set that cannot form a valid
// encounter (missing opposition, invalid participant).
var ErrInvalidEncounter = errors.New("combat: invalid encounter")

// ErrEncounterCorrupted reports an internal invariant violation. It must be
// unreachable from any sequence of valid public calls; reaching it means a
// defect in the controller, and the encounter is unusable afterwards.
var ErrEncounterCorrupted = errors.New("combat: encounter corrupted")

// Phase is the turn controller's state machine state.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRoundStart
	PhaseTurnActive
	PhaseTurnResolving
	PhaseRoundEnd
	PhaseTerminal
)

// String returns the phase label.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseRoundStart:
		return "round_start"
	case PhaseTurnActive:
		return "turn_active"
	case PhaseTurnResolving:
		return "turn_resolving"
	case PhaseRoundEnd:
		return "round_end"
	case PhaseTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Outcome is the encounter's terminal result.
type Outcome int

const (
	OutcomeOngoing Outcome = iota
	OutcomePlayerVictory
	OutcomeEnemyVictory
	OutcomeDraw
)

// String returns the outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ongoing"
	case OutcomePlayerVictory:
		return "player_victory"
	case OutcomeEnemyVictory:
		return "enemy_victory"
	case OutcomeDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Encounter owns the authoritative state of one combat: the participants in
// initiative order, round and turn progression, and the combat log. All
// mutation goes through AdvanceTurn; other components receive read access
// and return data.
//
// Invariant: unless Phase == PhaseTerminal, turnIndex addresses a
// non-incapacitated participant.
type Encounter struct {
	ID string

	participants []*actor.Participant
	byID         map[string]*actor.Participant
	// insertionOrder preserves the caller's participant ordering for
	// initiative tie-breaks.
	insertionOrder map[string]int

	Round     int
	turnIndex int
	Phase     Phase
	Outcome   Outcome

	Terrain *grid.Terrain

	log []LogEntry

	abilities *ability.Registry
	effects   *effect.Registry
	src       dice.Source
	tuning    Tuning

	initiativeRolls  map[string]int
	initiativeScores map[string]float64
	attrFingerprints map[string][4]int

	// guardDef is the built-in effect the Defend action applies.
	guardDef *effect.Definition
}

// NewEncounter validates participants, computes initiative, and returns an
// encounter ready for its first AdvanceTurn: round 1, first actor active
// with a fresh AP budget.
//
// Participants must include at least one Enemy and at least one Player/Ally
// combatant; anything less is ErrInvalidEncounter. Every participant must
// pass its own validation (non-zero max health in particular).
//
// Precondition: terrain, abilities, effects, and src must be non-nil.
func NewEncounter(id string, participants []*actor.Participant, terrain *grid.Terrain, abilities *ability.Registry, effects *effect.Registry, src dice.Source, tuning Tuning) (*Encounter, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 participants, got %d", ErrInvalidEncounter, len(participants))
	}

	e := &Encounter{
		ID:               id,
		participants:     make([]*actor.Participant, len(participants)),
		byID:             make(map[string]*actor.Participant, len(participants)),
		insertionOrder:   make(map[string]int, len(participants)),
		Terrain:          terrain,
		abilities:        abilities,
		effects:          effects,
		src:              src,
		tuning:           tuning,
		initiativeRolls:  make(map[string]int),
		initiativeScores: make(map[string]float64),
		attrFingerprints: make(map[string][4]int),
	}
	copy(e.participants, participants)

	hostiles, friendlies := 0, 0
	for i, p := range e.participants {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncounter, err)
		}
		if _, dup := e.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate participant id %q", ErrInvalidEncounter, p.ID)
		}
		if p.Effects == nil {
			p.Effects = effect.NewActiveSet(p.ID, nil)
		}
		if p.Cooldowns == nil {
			p.Cooldowns = make(map[string]int)
		}
		e.byID[p.ID] = p
		e.insertionOrder[p.ID] = i
		if p.Faction == actor.FactionEnemy {
			hostiles++
		} else {
			friendlies++
		}
	}
	if hostiles == 0 || friendlies == 0 {
		return nil, fmt.Errorf("%w: encounter needs opposing factions (%d friendly, %d hostile)", ErrInvalidEncounter, friendlies, hostiles)
	}

	e.guardDef = newGuardDef(tuning)

	e.Phase = PhaseRoundStart
	e.rollInitiative()
	e.Round = 1
	e.turnIndex = 0
	if err := e.settleActive(); err != nil {
		return nil, err
	}
	return e, nil
}

// Participants returns the initiative-ordered participant slice. Callers
// must treat the participants as read-only; mutation is AdvanceTurn's job.
func (e *Encounter) Participants() []*actor.Participant {
	out := make([]*actor.Participant, len(e.participants))
	copy(out, e.participants)
	return out
}

// Participant returns the participant with the given id, or (nil, false).
func (e *Encounter) Participant(id string) (*actor.Participant, bool) {
	p, ok := e.byID[id]
	return p, ok
}

// ActiveParticipant returns the participant whose turn it is, or nil when
// the encounter is terminal.
func (e *Encounter) ActiveParticipant() *actor.Participant {
	if e.Phase == PhaseTerminal {
		return nil
	}
	if e.turnIndex < 0 || e.turnIndex >= len(e.participants) {
		return nil
	}
	return e.participants[e.turnIndex]
}

// Abilities exposes the encounter's read-only ability catalog.
func (e *Encounter) Abilities() *ability.Registry { return e.abilities }

// EffectDefs exposes the encounter's read-only effect catalog.
func (e *Encounter) EffectDefs() *effect.Registry { return e.effects }

// Tuning returns the encounter's balancing constants.
func (e *Encounter) Tuning() Tuning { return e.tuning }

// OccupantAt returns the living participant standing on cell, or nil.
// Downed participants do not block or occupy cells for targeting purposes.
func (e *Encounter) OccupantAt(cell grid.Point) *actor.Participant {
	for _, p := range e.participants {
		if !p.IsDown() && p.Pos == cell {
			return p
		}
	}
	return nil
}

// AdvanceTurn resolves one action for the active participant. Rejected
// actions (wrong actor, unaffordable cost, invalid target, ...) return an
// ActionResult carrying the reason, leave all state untouched, and do not
// consume the turn. A resolved action is logged, terminal conditions are
// evaluated, and the turn passes to the next non-incapacitated participant;
// when the turn index wraps, end-of-round processing runs first.
//
// A non-nil error is only returned for internal invariant violations
// (ErrEncounterCorrupted) and means the encounter must be abandoned.
func (e *Encounter) AdvanceTurn(spec ActionSpec) (*ActionResult, error) {
	if e.Phase == PhaseTerminal {
		return &ActionResult{Rejected: RejectEncounterOver, Action: spec, Outcome: e.Outcome}, nil
	}
	active := e.ActiveParticipant()
	if active == nil {
		return nil, fmt.Errorf("%w: turn index %d out of range", ErrEncounterCorrupted, e.turnIndex)
	}
	if active.IsIncapacitated() {
		// settleActive must never leave an incapacitated actor active.
		return nil, fmt.Errorf("%w: incapacitated participant %q is active", ErrEncounterCorrupted, active.ID)
	}
	if spec.ActorID != active.ID {
		// Distinguish "not your turn" from "you cannot act at all": a
		// submission for a downed or stunned participant names an actor that
		// will never become active in its current state.
		if p, ok := e.byID[spec.ActorID]; ok && p.IsIncapacitated() {
			return &ActionResult{Rejected: RejectActorIncapacitated, Action: spec}, nil
		}
		return &ActionResult{Rejected: RejectWrongActor, Action: spec}, nil
	}

	e.Phase = PhaseTurnResolving
	result := e.resolve(active, spec)
	if !result.OK() {
		e.Phase = PhaseTurnActive
		return result, nil
	}

	e.appendLog(LogEntry{
		Kind:       LogAction,
		ActorID:    active.ID,
		ActorName:  active.Name,
		ActionType: spec.Type,
		AbilityID:  spec.AbilityID,
		Targets:    result.Targets,
	})

	if e.evaluateTerminal() {
		result.Outcome = e.Outcome
		return result, nil
	}

	e.turnIndex++
	if err := e.settleActive(); err != nil {
		return nil, err
	}
	result.Outcome = e.Outcome
	return result, nil
}

// settleActive advances turnIndex past incapacitated participants and runs
// end-of-round processing on every wrap, leaving the encounter either
// terminal or with a ready active participant.
//
// Postcondition: Phase is PhaseTerminal, or Phase is PhaseTurnActive and
// ActiveParticipant() is non-nil and able to act.
func (e *Encounter) settleActive() error {
	// Each iteration either lands on an actionable participant or skips one;
	// two full sweeps without one means nobody can act, which terminal
	// evaluation turns into an outcome. The bound is defensive.
	for scanned := 0; scanned <= 2*len(e.participants)+2; scanned++ {
		if e.turnIndex >= len(e.participants) {
			e.endOfRound()
			if e.Phase == PhaseTerminal {
				return nil
			}
			e.turnIndex = 0
		}
		p := e.participants[e.turnIndex]
		if p.IsIncapacitated() {
			if !p.IsDown() {
				// Stunned: the turn slot passes without an action.
				e.appendLog(LogEntry{Kind: LogSkip, ActorID: p.ID, ActorName: p.Name})
			}
			e.turnIndex++
			continue
		}
		p.RestoreAP()
		e.Phase = PhaseTurnActive
		return nil
	}
	return fmt.Errorf("%w: no actionable participant found", ErrEncounterCorrupted)
}

// endOfRound ticks status effects for all living participants (damage-over-
// time before heal-over-time before plain expiry, per participant in
// initiative order), decrements cooldowns, evaluates the round limit, and
// recomputes initiative for participants whose attributes changed.
func (e *Encounter) endOfRound() {
	e.Phase = PhaseRoundEnd

	var changes []EffectChange
	for _, p := range e.participants {
		if p.IsDown() {
			continue
		}
		for _, ev := range p.Effects.Tick() {
			change := EffectChange{
				ParticipantID: p.ID,
				EffectID:      ev.EffectID,
				Expired:       ev.Expired,
			}
			switch ev.Kind {
			case effect.KindDamageOverTime:
				change.Damage = p.ApplyDamage(ev.Amount)
			case effect.KindHealOverTime:
				change.Healing = p.ApplyHealing(ev.Amount)
			case effect.KindCorruption:
				p.AddCorruption(ev.Amount)
				change.CorruptionDelta = ev.Amount
			}
			changes = append(changes, change)
		}
		p.TickCooldowns()
	}
	if len(changes) > 0 {
		e.appendLog(LogEntry{Kind: LogRoundTick, EffectChanges: changes})
	}

	if e.evaluateTerminal() {
		return
	}

	if e.tuning.RoundLimit > 0 && e.Round >= e.tuning.RoundLimit {
		e.terminate(OutcomeDraw)
		return
	}

	e.refreshInitiativeIfChanged()
	e.Round++
	e.Phase = PhaseRoundStart
}

// evaluateTerminal checks the win/loss condition and transitions to
// PhaseTerminal when one side is fully down.
//
// Postcondition: returns true iff Phase == PhaseTerminal.
func (e *Encounter) evaluateTerminal() bool {
	if e.Phase == PhaseTerminal {
		return true
	}
	friendlyUp, hostileUp := false, false
	for _, p := range e.participants {
		if p.IsDown() {
			continue
		}
		if p.Faction == actor.FactionEnemy {
			hostileUp = true
		} else {
			friendlyUp = true
		}
	}
	switch {
	case !hostileUp && !friendlyUp:
		e.terminate(OutcomeDraw)
	case !hostileUp:
		e.terminate(OutcomePlayerVictory)
	case !friendlyUp:
		e.terminate(OutcomeEnemyVictory)
	default:
		return false
	}
	return true
}

func (e *Encounter) terminate(outcome Outcome) {
	e.Phase = PhaseTerminal
	e.Outcome = outcome
	e.appendLog(LogEntry{Kind: LogTerminal, Outcome: outcome})
}
