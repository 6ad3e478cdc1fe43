package ai

// DefaultDifficultyStep bounds how far the difficulty parameter may move
// per encounter when the caller does not configure a step.
const DefaultDifficultyStep = 0.1

// PerformanceSummary is the caller-supplied rolling measure of player
// performance for one finished encounter. The engine keeps no history of
// its own; adaptive difficulty is a fold of these summaries over a
// difficulty value the caller stores.
type PerformanceSummary struct {
	// RoundsTaken is the encounter length in rounds.
	RoundsTaken int
	// ExpectedRounds is the content author's estimate for the scenario; a
	// player finishing faster than this is outperforming.
	ExpectedRounds int
	// PlayerHealthFraction is the surviving player side's pooled health
	// fraction at encounter end, in [0,1]; 0 when the players lost.
	PlayerHealthFraction float64
	// PlayerWon reports whether the player side won.
	PlayerWon bool
}

// NextDifficulty nudges d toward the player's demonstrated skill: wins that
// are fast and leave the party healthy raise d, losses and narrow wins
// lower it. The move is clamped to maxStep per call and the result to
// [0,1], so one outlier encounter cannot swing the AI's behavior.
//
// Precondition: maxStep <= 0 selects DefaultDifficultyStep.
func NextDifficulty(d float64, perf PerformanceSummary, maxStep float64) float64 {
	if maxStep <= 0 {
		maxStep = DefaultDifficultyStep
	}

	var target float64
	if !perf.PlayerWon {
		target = d - maxStep
	} else {
		// Margin in [0,1]: health retained, plus a speed bonus for beating
		// the expected round count.
		margin := perf.PlayerHealthFraction
		if perf.ExpectedRounds > 0 && perf.RoundsTaken < perf.ExpectedRounds {
			margin += float64(perf.ExpectedRounds-perf.RoundsTaken) / float64(perf.ExpectedRounds)
		}
		if margin > 1 {
			margin = 1
		}
		// A comfortable win pushes d up; a pyrrhic one pulls it down.
		target = d + (margin-0.5)*2*maxStep
	}

	if target > d+maxStep {
		target = d + maxStep
	}
	if target < d-maxStep {
		target = d - maxStep
	}
	if target < 0 {
		target = 0
	}
	if target > 1 {
		target = 1
	}
	return target
}
