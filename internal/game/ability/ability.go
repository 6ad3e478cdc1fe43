// Package ability defines the immutable ability catalog: categories, costs,
// scaling, targeting shapes, and the status effects an ability applies on
// hit. Definitions are loaded once from YAML and treated as read-only for
// the process lifetime.
package ability

import (
	"fmt"

	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/grid"
)

// Category is the closed set of ability damage categories.
type Category int

const (
	CategoryPhysical Category = iota
	CategoryMagical
	CategoryShadow
	CategoryHybrid
	CategoryUtility
)

// String returns the YAML/catalog name of the category.
func (c Category) String() string {
	switch c {
	case CategoryPhysical:
		return "physical"
	case CategoryMagical:
		return "magical"
	case CategoryShadow:
		return "shadow"
	case CategoryHybrid:
		return "hybrid"
	case CategoryUtility:
		return "utility"
	default:
		return "unknown"
	}
}

// ParseCategory maps a catalog string to a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "physical":
		return CategoryPhysical, nil
	case "magical":
		return CategoryMagical, nil
	case "shadow":
		return CategoryShadow, nil
	case "hybrid":
		return CategoryHybrid, nil
	case "utility":
		return CategoryUtility, nil
	default:
		return CategoryPhysical, fmt.Errorf("ability: unknown category %q", s)
	}
}

// BlockedBySilence reports whether a silence effect prevents use of this
// category. Physical and utility actions stay available while silenced.
func (c Category) BlockedBySilence() bool {
	switch c {
	case CategoryMagical, CategoryShadow, CategoryHybrid:
		return true
	default:
		return false
	}
}

// ScaleAttr names the attribute an ability's power scales from.
type ScaleAttr int

const (
	ScaleNone ScaleAttr = iota
	ScaleMight
	ScaleIntellect
	ScaleWill
	ScaleShadow
)

// ParseScaleAttr maps a catalog string to a ScaleAttr. The empty string is
// ScaleNone (no scaling component).
func ParseScaleAttr(s string) (ScaleAttr, error) {
	switch s {
	case "":
		return ScaleNone, nil
	case "might":
		return ScaleMight, nil
	case "intellect":
		return ScaleIntellect, nil
	case "will":
		return ScaleWill, nil
	case "shadow":
		return ScaleShadow, nil
	default:
		return ScaleNone, fmt.Errorf("ability: unknown scaling attribute %q", s)
	}
}

// Value extracts the named attribute from attrs; 0 for ScaleNone.
func (a ScaleAttr) Value(attrs actor.Attributes) int {
	switch a {
	case ScaleMight:
		return attrs.Might
	case ScaleIntellect:
		return attrs.Intellect
	case ScaleWill:
		return attrs.Will
	case ScaleShadow:
		return attrs.Shadow
	default:
		return 0
	}
}

// Scaling pairs an attribute with its weight in the power formula.
type Scaling struct {
	AttrName string  `yaml:"attr"`
	Weight   float64 `yaml:"weight"`

	attr ScaleAttr
}

// Attr returns the parsed scaling attribute.
func (s Scaling) Attr() ScaleAttr { return s.attr }

// Definition is one entry in the ability catalog.
type Definition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	CategoryName string  `yaml:"category"`
	APCost       int     `yaml:"ap_cost"`
	ManaCost     int     `yaml:"mana_cost"`
	Primary      Scaling `yaml:"primary"`
	Secondary    Scaling `yaml:"secondary"`

	ShapeName string `yaml:"shape"`
	Radius    int    `yaml:"radius"`
	Length    int    `yaml:"length"`
	Range     int    `yaml:"range"`

	BasePower int `yaml:"base_power"`
	Cooldown  int `yaml:"cooldown"`

	// Heals makes the power restore health instead of removing it.
	Heals bool `yaml:"heals"`
	// AllySafe excludes the caster's allies from area resolution.
	AllySafe bool `yaml:"ally_safe"`
	// CorruptionRequired gates shadow abilities behind the corruption scalar.
	CorruptionRequired int `yaml:"corruption_required"`
	// AppliesEffects lists effect definition ids applied to each resolved
	// target.
	AppliesEffects []string `yaml:"applies_effects"`
	// Dispels makes the ability cleanse dispellable effects from its targets
	// instead of (or in addition to) its power component.
	Dispels bool `yaml:"dispels"`

	category Category
	shape    grid.Shape
}

// Category returns the parsed damage category.
func (d *Definition) Category() Category { return d.category }

// Shape returns the parsed targeting shape.
func (d *Definition) Shape() grid.Shape { return d.shape }

// IsArea reports whether the ability affects more than a single cell.
func (d *Definition) IsArea() bool { return d.shape.Kind != grid.ShapeSingle }

// Validate checks required fields and resolves the string-tagged enums.
//
// Postcondition: nil return guarantees a non-empty ID, a known category,
// shape, and scaling attributes, non-negative costs/range/power/cooldown,
// and CorruptionRequired in [0, 100].
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("ability.Definition: id must not be empty")
	}
	cat, err := ParseCategory(d.CategoryName)
	if err != nil {
		return fmt.Errorf("ability.Definition %q: %w", d.ID, err)
	}
	d.category = cat
	shapeKind, err := grid.ParseShapeKind(d.ShapeName)
	if err != nil {
		return fmt.Errorf("ability.Definition %q: %w", d.ID, err)
	}
	d.shape = grid.Shape{Kind: shapeKind, Radius: d.Radius, Length: d.Length}
	if d.Primary.attr, err = ParseScaleAttr(d.Primary.AttrName); err != nil {
		return fmt.Errorf("ability.Definition %q: primary: %w", d.ID, err)
	}
	if d.Secondary.attr, err = ParseScaleAttr(d.Secondary.AttrName); err != nil {
		return fmt.Errorf("ability.Definition %q: secondary: %w", d.ID, err)
	}
	if d.APCost < 0 || d.ManaCost < 0 {
		return fmt.Errorf("ability.Definition %q: costs must be >= 0", d.ID)
	}
	if d.Range < 0 {
		return fmt.Errorf("ability.Definition %q: range must be >= 0", d.ID)
	}
	if d.BasePower < 0 {
		return fmt.Errorf("ability.Definition %q: base_power must be >= 0", d.ID)
	}
	if d.Cooldown < 0 {
		return fmt.Errorf("ability.Definition %q: cooldown must be >= 0", d.ID)
	}
	if d.CorruptionRequired < 0 || d.CorruptionRequired > 100 {
		return fmt.Errorf("ability.Definition %q: corruption_required %d out of [0,100]", d.ID, d.CorruptionRequired)
	}
	if d.CorruptionRequired > 0 && cat != CategoryShadow && cat != CategoryHybrid {
		return fmt.Errorf("ability.Definition %q: corruption_required only applies to shadow/hybrid abilities", d.ID)
	}
	return nil
}

// BasicAttackID is the implicit ability available to every participant.
const BasicAttackID = "basic_attack"

// BasicAttack returns the built-in Might-scaled melee attack. It is
// registered automatically so candidate generation and resolution treat it
// like any catalog ability.
func BasicAttack() *Definition {
	d := &Definition{
		ID:           BasicAttackID,
		Name:         "Attack",
		CategoryName: "physical",
		APCost:       1,
		Primary:      Scaling{AttrName: "might", Weight: 0.5},
		ShapeName:    "single",
		Range:        1,
		BasePower:    5,
	}
	if err := d.Validate(); err != nil {
		panic("ability: built-in basic attack invalid: " + err.Error())
	}
	return d
}
