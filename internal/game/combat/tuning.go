package combat

// Tuning collects the numeric balancing constants the resolution and
// initiative formulas use. The defaults are the design baseline; hosts may
// override them through configuration without touching any formula.
type Tuning struct {
	// Initiative score weights: w·Might + w·Intellect + w·Shadow +
	// equipment bonus + d20.
	InitiativeMightWeight     float64
	InitiativeIntellectWeight float64
	InitiativeShadowWeight    float64

	// LevelFactor scales the level term of the power formula.
	LevelFactor float64
	// SecondaryScale dampens the secondary attribute's contribution.
	SecondaryScale float64
	// VarianceSpread is the bounded random variance in percent: a final
	// amount is multiplied by a factor drawn from [100-spread, 100+spread]%.
	VarianceSpread int
	// MinConnectingDamage floors the damage of a connecting hit after
	// mitigation, so high armor reads as "almost no damage", never "immune".
	MinConnectingDamage int

	// RoundLimit ends the encounter in a draw when reached; 0 disables the
	// limit.
	RoundLimit int

	// DefendArmorBonus is the armor delta of the built-in guard effect.
	DefendArmorBonus int
}

// DefaultTuning returns the design-baseline constants.
func DefaultTuning() Tuning {
	return Tuning{
		InitiativeMightWeight:     0.30,
		InitiativeIntellectWeight: 0.30,
		InitiativeShadowWeight:    0.10,
		LevelFactor:               1.0,
		SecondaryScale:            0.5,
		VarianceSpread:            20,
		MinConnectingDamage:       1,
		RoundLimit:                50,
		DefendArmorBonus:          4,
	}
}
