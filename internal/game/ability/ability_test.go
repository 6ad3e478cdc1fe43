package ability_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskfall/engine/internal/game/ability"
	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/game/grid"
)

func TestBasicAttackRegisteredByDefault(t *testing.T) {
	reg := ability.NewRegistry()
	atk, ok := reg.Get(ability.BasicAttackID)
	require.True(t, ok)
	assert.Equal(t, ability.CategoryPhysical, atk.Category())
	assert.Equal(t, 1, atk.APCost)
	assert.Equal(t, 0, atk.ManaCost)
	assert.Equal(t, 1, atk.Range)
	assert.False(t, atk.IsArea())
}

func TestValidateResolvesEnums(t *testing.T) {
	d := &ability.Definition{
		ID:           "umbral_lash",
		CategoryName: "shadow",
		APCost:       2, ManaCost: 6,
		Primary:   ability.Scaling{AttrName: "shadow", Weight: 1.2},
		Secondary: ability.Scaling{AttrName: "intellect", Weight: 0.4},
		ShapeName: "cone", Length: 3,
		Range: 1, BasePower: 12, Cooldown: 2,
		CorruptionRequired: 25,
	}
	require.NoError(t, d.Validate())
	assert.Equal(t, ability.CategoryShadow, d.Category())
	assert.Equal(t, grid.ShapeCone, d.Shape().Kind)
	assert.Equal(t, 3, d.Shape().Length)
	assert.True(t, d.IsArea())
	assert.Equal(t, ability.ScaleShadow, d.Primary.Attr())
}

func TestValidateRejections(t *testing.T) {
	cases := map[string]*ability.Definition{
		"empty id":              {CategoryName: "physical"},
		"unknown category":      {ID: "x", CategoryName: "psychic"},
		"unknown shape":         {ID: "x", CategoryName: "physical", ShapeName: "donut"},
		"unknown scaling":       {ID: "x", CategoryName: "physical", Primary: ability.Scaling{AttrName: "luck"}},
		"negative cost":         {ID: "x", CategoryName: "physical", APCost: -1},
		"negative power":        {ID: "x", CategoryName: "physical", BasePower: -5},
		"corruption range":      {ID: "x", CategoryName: "shadow", CorruptionRequired: 150},
		"corruption on physical": {ID: "x", CategoryName: "physical", CorruptionRequired: 10},
	}
	for name, def := range cases {
		assert.Error(t, def.Validate(), name)
	}
}

func TestSilenceBlocksCastingCategories(t *testing.T) {
	assert.False(t, ability.CategoryPhysical.BlockedBySilence())
	assert.False(t, ability.CategoryUtility.BlockedBySilence())
	assert.True(t, ability.CategoryMagical.BlockedBySilence())
	assert.True(t, ability.CategoryShadow.BlockedBySilence())
	assert.True(t, ability.CategoryHybrid.BlockedBySilence())
}

func TestScaleAttrValue(t *testing.T) {
	attrs := actor.Attributes{Might: 1, Intellect: 2, Will: 3, Shadow: 4}
	assert.Equal(t, 1, ability.ScaleMight.Value(attrs))
	assert.Equal(t, 2, ability.ScaleIntellect.Value(attrs))
	assert.Equal(t, 3, ability.ScaleWill.Value(attrs))
	assert.Equal(t, 4, ability.ScaleShadow.Value(attrs))
	assert.Equal(t, 0, ability.ScaleNone.Value(attrs))
}

func TestLoadDirectoryAndEffectRefs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "venom_strike.yaml"), []byte(`
id: venom_strike
name: Venom Strike
category: physical
ap_cost: 1
primary:
  attr: might
  weight: 0.8
shape: single
range: 1
base_power: 8
applies_effects: [poison]
`), 0o644))

	reg, err := ability.LoadDirectory(dir)
	require.NoError(t, err)
	_, ok := reg.Get("venom_strike")
	require.True(t, ok)

	effects := effect.NewRegistry()
	assert.Error(t, reg.ValidateEffectRefs(effects), "missing poison effect should fail")

	require.NoError(t, effects.Register(&effect.Definition{
		ID: "poison", KindName: "damage_over_time", PolicyName: "independent",
		MaxStacks: 2, Magnitude: 3, Duration: 3,
	}))
	assert.NoError(t, reg.ValidateEffectRefs(effects))
}

func TestLoadDirectoryRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\ncategory: physical\npower: 3\n"), 0o644))
	_, err := ability.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestAllReturnsSortedByID(t *testing.T) {
	reg := ability.NewRegistry()
	for _, id := range []string{"zephyr", "axe", "mend"} {
		require.NoError(t, reg.Register(&ability.Definition{
			ID: id, CategoryName: "physical", APCost: 1, ShapeName: "single", Range: 1,
		}))
	}
	var ids []string
	for _, d := range reg.All() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"axe", ability.BasicAttackID, "mend", "zephyr"}, ids)
}
