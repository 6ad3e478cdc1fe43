// Package effect implements the timed status condition engine: definitions
// loaded from YAML, per-participant active sets with stacking policies,
// ordered round ticking, dispelling, and immunity.
package effect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the closed set of effect categories.
type Kind int

const (
	KindBuff Kind = iota
	KindDebuff
	KindDamageOverTime
	KindHealOverTime
	KindCorruption
)

// String returns the YAML/catalog name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBuff:
		return "buff"
	case KindDebuff:
		return "debuff"
	case KindDamageOverTime:
		return "damage_over_time"
	case KindHealOverTime:
		return "heal_over_time"
	case KindCorruption:
		return "corruption"
	default:
		return "unknown"
	}
}

// ParseKind maps a catalog string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "buff":
		return KindBuff, nil
	case "debuff":
		return KindDebuff, nil
	case "damage_over_time", "dot":
		return KindDamageOverTime, nil
	case "heal_over_time", "hot":
		return KindHealOverTime, nil
	case "corruption":
		return KindCorruption, nil
	default:
		return KindBuff, fmt.Errorf("effect: unknown kind %q", s)
	}
}

// tickClass orders kinds within a round tick: damage resolves before healing,
// and both before plain duration decrement, so damage cannot be healed away
// by an effect expiring in the same tick.
func (k Kind) tickClass() int {
	switch k {
	case KindDamageOverTime:
		return 0
	case KindHealOverTime:
		return 1
	default:
		return 2
	}
}

// StackPolicy governs reapplication of an effect that is already present.
type StackPolicy int

const (
	// StackIndependent adds stacks up to MaxStacks; per-tick magnitude scales
	// with the stack count. At the cap, reapplication refreshes duration only.
	StackIndependent StackPolicy = iota
	// StackRefresh resets duration to the definition's and keeps the larger
	// magnitude.
	StackRefresh
	// StackNone ignores reapplication entirely.
	StackNone
)

// String returns the YAML/catalog name of the policy.
func (p StackPolicy) String() string {
	switch p {
	case StackIndependent:
		return "independent"
	case StackRefresh:
		return "refresh"
	case StackNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseStackPolicy maps a catalog string to a StackPolicy.
func ParseStackPolicy(s string) (StackPolicy, error) {
	switch s {
	case "independent":
		return StackIndependent, nil
	case "refresh", "":
		return StackRefresh, nil
	case "none":
		return StackNone, nil
	default:
		return StackRefresh, fmt.Errorf("effect: unknown stack policy %q", s)
	}
}

// Definition is the static definition of an effect, loaded from YAML.
// Definitions are shared, read-only reference data; never mutated at runtime.
type Definition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	KindName    string `yaml:"kind"`
	PolicyName  string `yaml:"stack_policy"`
	// MaxStacks caps independent stacking; 0 means 1.
	MaxStacks int `yaml:"max_stacks"`
	// Magnitude is the per-round amount for DoT/HoT/corruption effects and
	// the strength basis for buffs/debuffs.
	Magnitude int `yaml:"magnitude"`
	// Duration is the lifetime in rounds; -1 means permanent.
	Duration int `yaml:"duration"`

	// Continuous modifiers while active. Penalties are expressed as negative
	// values so a single delta field covers buffs and debuffs.
	ArmorDelta     int `yaml:"armor_delta"`
	AttackDelta    int `yaml:"attack_delta"`
	MightDelta     int `yaml:"might_delta"`
	IntellectDelta int `yaml:"intellect_delta"`
	WillDelta      int `yaml:"will_delta"`
	ShadowDelta    int `yaml:"shadow_delta"`

	// ShadowResistance reduces incoming shadow damage while active.
	ShadowResistance int `yaml:"shadow_resistance"`

	// PreventsActing marks a stun: the owner cannot act and is skipped.
	PreventsActing bool `yaml:"prevents_acting"`
	// PreventsMagic marks a silence: magical, shadow, and hybrid abilities
	// are blocked.
	PreventsMagic bool `yaml:"prevents_magic"`
	// Dispellable permits removal by cleanse abilities. Defaults false in
	// YAML, so cleansable effects must opt in.
	Dispellable bool `yaml:"dispellable"`
	// GrantsImmunity lists effect kinds the owner is immune to while this
	// effect is active.
	GrantsImmunity []string `yaml:"grants_immunity"`

	// Lua hook function names; empty means no hook.
	LuaOnApply  string `yaml:"lua_on_apply"`
	LuaOnTick   string `yaml:"lua_on_tick"`
	LuaOnExpire string `yaml:"lua_on_expire"`

	kind     Kind
	policy   StackPolicy
	immunity []Kind
}

// Kind returns the parsed effect kind.
func (d *Definition) Kind() Kind { return d.kind }

// Policy returns the parsed stacking policy.
func (d *Definition) Policy() StackPolicy { return d.policy }

// ImmunityKinds returns the parsed kinds this effect grants immunity to.
func (d *Definition) ImmunityKinds() []Kind { return d.immunity }

// Validate checks required fields and resolves the string-tagged enums.
//
// Postcondition: nil return guarantees non-empty ID, a known kind and policy,
// MaxStacks >= 0, Duration >= -1, and all GrantsImmunity entries parse.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("effect.Definition: id must not be empty")
	}
	kind, err := ParseKind(d.KindName)
	if err != nil {
		return fmt.Errorf("effect.Definition %q: %w", d.ID, err)
	}
	d.kind = kind
	policy, err := ParseStackPolicy(d.PolicyName)
	if err != nil {
		return fmt.Errorf("effect.Definition %q: %w", d.ID, err)
	}
	d.policy = policy
	if d.MaxStacks < 0 {
		return fmt.Errorf("effect.Definition %q: max_stacks must be >= 0", d.ID)
	}
	if d.Duration < -1 {
		return fmt.Errorf("effect.Definition %q: duration must be >= -1", d.ID)
	}
	d.immunity = d.immunity[:0]
	for _, name := range d.GrantsImmunity {
		k, err := ParseKind(name)
		if err != nil {
			return fmt.Errorf("effect.Definition %q: grants_immunity: %w", d.ID, err)
		}
		d.immunity = append(d.immunity, k)
	}
	return nil
}

// Registry holds all known effect Definitions keyed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register validates def and adds it to the registry, overwriting any
// existing entry with the same ID.
//
// Precondition: def must not be nil.
func (r *Registry) Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the Definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot slice of all registered Definitions, sorted by ID.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Definition,
// and returns a populated Registry. Unknown YAML fields are errors, so typos
// in content files surface at load time rather than as silently inert
// effects.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the file
// that failed to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("effect: reading dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("effect: reading %q: %w", path, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("effect: parsing %q: %w", path, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("effect: %q: %w", path, err)
		}
	}
	return reg, nil
}
