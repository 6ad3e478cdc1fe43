package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/duskfall/engine/internal/game/ai"
)

func TestNextDifficultyDirections(t *testing.T) {
	loss := ai.PerformanceSummary{PlayerWon: false}
	assert.Less(t, ai.NextDifficulty(0.5, loss, 0.1), 0.5, "a loss lowers difficulty")

	easyWin := ai.PerformanceSummary{PlayerWon: true, PlayerHealthFraction: 0.95, RoundsTaken: 3, ExpectedRounds: 8}
	assert.Greater(t, ai.NextDifficulty(0.5, easyWin, 0.1), 0.5, "a dominant win raises difficulty")

	pyrrhic := ai.PerformanceSummary{PlayerWon: true, PlayerHealthFraction: 0.05, RoundsTaken: 12, ExpectedRounds: 8}
	assert.Less(t, ai.NextDifficulty(0.5, pyrrhic, 0.1), 0.5, "a narrow win lowers difficulty")
}

func TestNextDifficultyBoundedStepAndRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.Float64Range(0, 1).Draw(rt, "d")
		step := rapid.Float64Range(0.01, 0.3).Draw(rt, "step")
		perf := ai.PerformanceSummary{
			PlayerWon:            rapid.Bool().Draw(rt, "won"),
			PlayerHealthFraction: rapid.Float64Range(0, 1).Draw(rt, "hp"),
			RoundsTaken:          rapid.IntRange(1, 30).Draw(rt, "rounds"),
			ExpectedRounds:       rapid.IntRange(1, 30).Draw(rt, "expected"),
		}
		next := ai.NextDifficulty(d, perf, step)
		if next < 0 || next > 1 {
			rt.Fatalf("difficulty %v out of [0,1]", next)
		}
		if diff := next - d; diff > step+1e-9 || diff < -step-1e-9 {
			rt.Fatalf("step %v exceeds bound %v", diff, step)
		}
	})
}
