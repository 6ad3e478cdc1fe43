package session

import (
	"github.com/duskfall/engine/internal/game/combat"
	"github.com/duskfall/engine/internal/game/grid"
)

// ParticipantView is a read-only snapshot of one participant for UI and
// logging consumers.
type ParticipantView struct {
	ID        string
	Name      string
	Faction   string
	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int
	AP        int
	MaxAP     int
	Pos       grid.Point
	Down      bool
	Effects   []EffectView
}

// EffectView summarizes one active status effect.
type EffectView struct {
	ID        string
	Kind      string
	Stacks    int
	Remaining int
}

// EncounterStateView is the read-only projection State returns. It shares
// no mutable data with the live encounter; mutating a view has no effect
// on combat.
type EncounterStateView struct {
	ID           string
	Round        int
	Phase        string
	Outcome      string
	ActiveID     string
	Difficulty   float64
	Participants []ParticipantView
	Log          []combat.LogEntry
}

func buildView(enc *combat.Encounter, difficulty float64) *EncounterStateView {
	view := &EncounterStateView{
		ID:         enc.ID,
		Round:      enc.Round,
		Phase:      enc.Phase.String(),
		Outcome:    enc.Outcome.String(),
		Difficulty: difficulty,
		Log:        enc.Log(),
	}
	if active := enc.ActiveParticipant(); active != nil {
		view.ActiveID = active.ID
	}
	for _, p := range enc.Participants() {
		pv := ParticipantView{
			ID:        p.ID,
			Name:      p.Name,
			Faction:   p.Faction.String(),
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			Mana:      p.Mana,
			MaxMana:   p.MaxMana,
			AP:        p.AP,
			MaxAP:     p.MaxAP,
			Pos:       p.Pos,
			Down:      p.IsDown(),
		}
		for _, inst := range p.Effects.All() {
			pv.Effects = append(pv.Effects, EffectView{
				ID:        inst.Def.ID,
				Kind:      inst.Def.Kind().String(),
				Stacks:    inst.Stacks,
				Remaining: inst.Remaining,
			})
		}
		view.Participants = append(view.Participants, pv)
	}
	return view
}
