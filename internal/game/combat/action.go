// Package combat implements the encounter core: the turn controller state
// machine, initiative ordering, and the action resolution engine.
package combat

import (
	"github.com/duskfall/engine/internal/game/grid"
)

// ActionType identifies what a participant intends to do on their turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota // zero value; intentionally invalid
	ActionAbility                   // use an ability (the basic attack included)
	ActionMove                      // move to a reachable cell
	ActionDefend                    // raise guard until end of round; costs 1 AP
	ActionWait                      // forfeit the turn; costs nothing, always legal
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionAbility:
		return "ability"
	case ActionMove:
		return "move"
	case ActionDefend:
		return "defend"
	case ActionWait:
		return "wait"
	default:
		return "unknown"
	}
}

// ActionSpec describes one action submitted for the active participant.
// AbilityID is set for ActionAbility. TargetID names a participant for
// single-target abilities; TargetCell anchors area abilities and movement.
// When an area ability carries only TargetID, the target's cell anchors the
// shape.
type ActionSpec struct {
	ActorID    string
	Type       ActionType
	AbilityID  string
	TargetID   string
	TargetCell *grid.Point
}

// RejectReason is the closed set of recoverable rejection kinds. A rejected
// action leaves the encounter untouched and does not consume the turn.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectWrongActor
	RejectActorIncapacitated
	RejectActorSilenced
	RejectInsufficientResources
	RejectAbilityOnCooldown
	RejectCorruptionRequired
	RejectUnknownAbility
	RejectInvalidTarget
	RejectOutOfRange
	RejectUnreachable
	RejectEncounterOver
	RejectInvalidAction
)

// String returns the machine-readable rejection label.
func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectWrongActor:
		return "wrong_actor"
	case RejectActorIncapacitated:
		return "actor_incapacitated"
	case RejectActorSilenced:
		return "actor_silenced"
	case RejectInsufficientResources:
		return "insufficient_resources"
	case RejectAbilityOnCooldown:
		return "ability_on_cooldown"
	case RejectCorruptionRequired:
		return "corruption_required"
	case RejectUnknownAbility:
		return "unknown_ability"
	case RejectInvalidTarget:
		return "invalid_target"
	case RejectOutOfRange:
		return "out_of_range"
	case RejectUnreachable:
		return "unreachable"
	case RejectEncounterOver:
		return "encounter_over"
	case RejectInvalidAction:
		return "invalid_action"
	default:
		return "unknown"
	}
}

// TargetOutcome records what one resolved action did to one target.
type TargetOutcome struct {
	TargetID       string
	Damage         int
	Healing        int
	EffectsApplied []string
	EffectsRemoved []string
	// Downed is true when this action reduced the target to zero health.
	Downed bool
}

// ActionResult is the typed outcome of AdvanceTurn: either a rejection
// (Rejected != RejectNone, state unchanged, turn not consumed) or a resolved
// action with its per-target outcomes.
type ActionResult struct {
	Rejected RejectReason
	Action   ActionSpec
	Targets  []TargetOutcome
	// MovedTo is set for resolved movement.
	MovedTo *grid.Point
	// Outcome reflects the encounter's terminal state after this action.
	Outcome Outcome
}

// OK reports whether the action was resolved rather than rejected.
func (r *ActionResult) OK() bool { return r.Rejected == RejectNone }
