package combat

import (
	"sort"

	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/dice"
)

// initiativeScore computes a participant's initiative from effective
// attributes, equipment bonus, and a previously rolled d20. The roll is kept
// per participant so mid-encounter recomputes reorder on attribute changes
// without rerolling.
func (e *Encounter) initiativeScore(p *actor.Participant) float64 {
	attrs := p.EffectiveAttributes()
	return e.tuning.InitiativeMightWeight*float64(attrs.Might) +
		e.tuning.InitiativeIntellectWeight*float64(attrs.Intellect) +
		e.tuning.InitiativeShadowWeight*float64(attrs.Shadow) +
		float64(p.InitiativeBonus) +
		float64(e.initiativeRolls[p.ID])
}

// rollInitiative rolls each participant's d20 and computes initial scores.
//
// Postcondition: every participant has a roll, a score, and a fingerprint.
func (e *Encounter) rollInitiative() {
	for _, p := range e.participants {
		e.initiativeRolls[p.ID] = dice.D20(e.src)
	}
	e.recomputeScores(nil)
}

// recomputeScores refreshes scores for the given participant IDs (nil means
// all) and re-sorts the turn order. Ties break by higher effective Might,
// then by original insertion order; the sort is stable on the insertion
// ordering by construction.
func (e *Encounter) recomputeScores(only map[string]bool) {
	for _, p := range e.participants {
		if only != nil && !only[p.ID] {
			continue
		}
		e.initiativeScores[p.ID] = e.initiativeScore(p)
		e.attrFingerprints[p.ID] = e.attributeFingerprint(p)
	}
	sort.SliceStable(e.participants, func(i, j int) bool {
		pi, pj := e.participants[i], e.participants[j]
		si, sj := e.initiativeScores[pi.ID], e.initiativeScores[pj.ID]
		if si != sj {
			return si > sj
		}
		mi, mj := pi.EffectiveAttributes().Might, pj.EffectiveAttributes().Might
		if mi != mj {
			return mi > mj
		}
		return e.insertionOrder[pi.ID] < e.insertionOrder[pj.ID]
	})
}

// attributeFingerprint packs the initiative-relevant inputs into a
// comparable value, so end-of-round recomputation touches only participants
// whose inputs actually changed.
func (e *Encounter) attributeFingerprint(p *actor.Participant) [4]int {
	attrs := p.EffectiveAttributes()
	return [4]int{attrs.Might, attrs.Intellect, attrs.Shadow, p.InitiativeBonus}
}

// refreshInitiativeIfChanged recomputes scores only for participants whose
// fingerprint moved since the last computation. Pure optimization: a full
// recompute would produce the same order.
func (e *Encounter) refreshInitiativeIfChanged() {
	changed := make(map[string]bool)
	for _, p := range e.participants {
		if e.attributeFingerprint(p) != e.attrFingerprints[p.ID] {
			changed[p.ID] = true
		}
	}
	if len(changed) == 0 {
		return
	}
	e.recomputeScores(changed)
}
