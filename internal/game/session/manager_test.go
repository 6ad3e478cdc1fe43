package session_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duskfall/engine/internal/game/ability"
	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/ai"
	"github.com/duskfall/engine/internal/game/combat"
	"github.com/duskfall/engine/internal/game/dice"
	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/game/grid"
	"github.com/duskfall/engine/internal/game/session"
)

func testManager(t *testing.T) *session.Manager {
	t.Helper()
	abilities := ability.NewRegistry()
	require.NoError(t, abilities.Register(&ability.Definition{
		ID: "strike", Name: "Strike", CategoryName: "physical", APCost: 1, ShapeName: "single", Range: 1, BasePower: 10,
	}))
	var seed uint64
	return session.NewManager(session.Config{
		Abilities: abilities,
		Effects:   effect.NewRegistry(),
		Profiles:  ai.NewRegistry(),
		Logger:    zap.NewNop(),
		Tuning:    combat.DefaultTuning(),
		NewSource: func() dice.Source {
			seed++
			return dice.NewSeededSource(seed)
		},
		BaseDifficulty: 0.5,
	})
}

func player(id string, pos grid.Point) *actor.Participant {
	return &actor.Participant{
		ID: id, Name: id, Faction: actor.FactionPlayer,
		Health: 60, MaxHealth: 60, Mana: 10, MaxMana: 10,
		AP: 3, MaxAP: 3, Pos: pos,
		Control: actor.ControlPlayer,
	}
}

func aiEnemy(id, profileID string, pos grid.Point) *actor.Participant {
	p := player(id, pos)
	p.Faction = actor.FactionEnemy
	p.Control = actor.ControlAI
	p.ProfileID = profileID
	return p
}

func TestCreateEncounterRejectsUnknownProfile(t *testing.T) {
	m := testManager(t)
	_, err := m.CreateEncounter([]*actor.Participant{
		player("hero", grid.Point{X: 0, Y: 0}),
		aiEnemy("ghoul", "no_such_profile", grid.Point{X: 1, Y: 0}),
	}, grid.NewTerrain(8, 8))
	assert.Error(t, err, "profile references are configuration, checked at create time")
}

func TestLifecycleSubmitAndState(t *testing.T) {
	m := testManager(t)
	hero := player("hero", grid.Point{X: 0, Y: 0})
	hero.InitiativeBonus = 100
	id, err := m.CreateEncounter([]*actor.Participant{
		hero,
		aiEnemy("ghoul", "aggressive", grid.Point{X: 1, Y: 0}),
	}, grid.NewTerrain(8, 8))
	require.NoError(t, err)
	require.Equal(t, 1, m.SessionCount())

	res, err := m.SubmitAction(id, combat.ActionSpec{ActorID: "hero", Type: combat.ActionAbility, AbilityID: "strike", TargetID: "ghoul"})
	require.NoError(t, err)
	require.True(t, res.OK())

	view, err := m.State(id)
	require.NoError(t, err)
	assert.Equal(t, "ghoul", view.ActiveID)
	assert.NotEmpty(t, view.Log)
	for _, pv := range view.Participants {
		if pv.ID == "ghoul" {
			assert.Less(t, pv.Health, pv.MaxHealth)
		}
	}

	require.NoError(t, m.CloseEncounter(id))
	assert.Equal(t, 0, m.SessionCount())
	_, err = m.State(id)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestAdvanceIfAIDrivesOnlyAITurns(t *testing.T) {
	m := testManager(t)
	hero := player("hero", grid.Point{X: 0, Y: 0})
	hero.InitiativeBonus = 100
	id, err := m.CreateEncounter([]*actor.Participant{
		hero,
		aiEnemy("ghoul", "aggressive", grid.Point{X: 1, Y: 0}),
	}, grid.NewTerrain(8, 8))
	require.NoError(t, err)

	// The hero is active: the AI driver must decline.
	_, acted, err := m.AdvanceIfAI(id)
	require.NoError(t, err)
	assert.False(t, acted)

	res, err := m.SubmitAction(id, combat.ActionSpec{ActorID: "hero", Type: combat.ActionWait})
	require.NoError(t, err)
	require.True(t, res.OK())

	res, acted, err = m.AdvanceIfAI(id)
	require.NoError(t, err)
	require.True(t, acted)
	assert.True(t, res.OK(), "the AI must always produce a legal action")
}

func TestAIDuelRunsToTerminal(t *testing.T) {
	m := testManager(t)
	id, err := m.CreateEncounter([]*actor.Participant{
		func() *actor.Participant {
			p := player("paladin", grid.Point{X: 0, Y: 0})
			p.Control = actor.ControlAI
			p.ProfileID = "defensive"
			return p
		}(),
		aiEnemy("ghoul", "berserker", grid.Point{X: 1, Y: 0}),
	}, grid.NewTerrain(8, 8))
	require.NoError(t, err)

	terminal := false
	for i := 0; i < 400; i++ {
		res, acted, err := m.AdvanceIfAI(id)
		require.NoError(t, err)
		require.True(t, acted, "both sides are AI; the driver must always act")
		if res.Outcome != combat.OutcomeOngoing {
			terminal = true
			break
		}
	}
	assert.True(t, terminal, "an all-AI duel must reach a terminal outcome")

	view, err := m.State(id)
	require.NoError(t, err)
	assert.Empty(t, view.ActiveID, "terminal encounters have no active participant")
}

func TestReportPerformanceMovesDifficultyBoundedly(t *testing.T) {
	m := testManager(t)
	id, err := m.CreateEncounter([]*actor.Participant{
		player("hero", grid.Point{X: 0, Y: 0}),
		aiEnemy("ghoul", "aggressive", grid.Point{X: 1, Y: 0}),
	}, grid.NewTerrain(8, 8))
	require.NoError(t, err)

	d0, err := m.Difficulty(id)
	require.NoError(t, err)
	require.Equal(t, 0.5, d0)

	d1, err := m.ReportPerformance(id, ai.PerformanceSummary{PlayerWon: true, PlayerHealthFraction: 1, RoundsTaken: 2, ExpectedRounds: 10})
	require.NoError(t, err)
	assert.Greater(t, d1, d0)
	assert.LessOrEqual(t, d1, d0+ai.DefaultDifficultyStep+1e-9)

	d2, err := m.ReportPerformance(id, ai.PerformanceSummary{PlayerWon: false})
	require.NoError(t, err)
	assert.Less(t, d2, d1)
}

func TestUnknownSessionErrors(t *testing.T) {
	m := testManager(t)
	id := uuid.New()
	_, err := m.SubmitAction(id, combat.ActionSpec{})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, _, err = m.AdvanceIfAI(id)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.ErrorIs(t, m.CloseEncounter(id), session.ErrSessionNotFound)
}
