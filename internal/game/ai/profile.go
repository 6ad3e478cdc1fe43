// Package ai implements the decision engine for computer-controlled
// participants: candidate action generation, personality-weighted scoring,
// and difficulty-interpolated selection over an encounter snapshot.
package ai

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is a named personality: a vector of weight multipliers applied to
// the action scoring function. Profiles are immutable reference data shared
// by every participant that names them.
//
// Invariant: all weights are >= 0 and RetreatThreshold is in [0,1].
type Profile struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Attack scales damage-dealing candidates.
	Attack float64 `yaml:"attack"`
	// Defense scales the defend action and damage-avoidance.
	Defense float64 `yaml:"defense"`
	// Heal scales healing and cleansing candidates.
	Heal float64 `yaml:"heal"`
	// Buff scales candidates whose main value is an applied effect.
	Buff float64 `yaml:"buff"`
	// Positioning scales movement candidates.
	Positioning float64 `yaml:"positioning"`
	// RiskTolerance shapes the own-health risk term: values above 1 keep an
	// actor aggressive even when badly hurt, values near 0 make low health
	// suppress aggressive candidates.
	RiskTolerance float64 `yaml:"risk_tolerance"`
	// TargetVulnerability scales how strongly wounded/debuffed targets are
	// preferred over healthy ones.
	TargetVulnerability float64 `yaml:"target_vulnerability"`
	// AreaPreference scales area-shaped candidates relative to single-target
	// ones.
	AreaPreference float64 `yaml:"area_preference"`
	// RetreatThreshold is the own-health fraction below which defensive,
	// healing, and withdrawing candidates are boosted.
	RetreatThreshold float64 `yaml:"retreat_threshold"`
}

// Validate checks the weight vector.
//
// Postcondition: nil return guarantees non-empty ID, no negative weight,
// and RetreatThreshold in [0,1].
func (p *Profile) Validate() error {
	if p.ID == "" {
		return errors.New("ai.Profile: id must not be empty")
	}
	for name, w := range map[string]float64{
		"attack":               p.Attack,
		"defense":              p.Defense,
		"heal":                 p.Heal,
		"buff":                 p.Buff,
		"positioning":          p.Positioning,
		"risk_tolerance":       p.RiskTolerance,
		"target_vulnerability": p.TargetVulnerability,
		"area_preference":      p.AreaPreference,
	} {
		if w < 0 {
			return fmt.Errorf("ai.Profile %q: %s must be >= 0, got %v", p.ID, name, w)
		}
	}
	if p.RetreatThreshold < 0 || p.RetreatThreshold > 1 {
		return fmt.Errorf("ai.Profile %q: retreat_threshold %v out of [0,1]", p.ID, p.RetreatThreshold)
	}
	return nil
}

// BuiltinProfiles returns the eight stock personalities. Content-loaded
// profiles may override any of them by reusing the id.
func BuiltinProfiles() []*Profile {
	return []*Profile{
		{ID: "aggressive", Name: "Aggressive", Attack: 1.5, Defense: 0.4, Heal: 0.3, Buff: 0.5, Positioning: 0.6, RiskTolerance: 1.1, TargetVulnerability: 1.0, AreaPreference: 0.8, RetreatThreshold: 0.1},
		{ID: "defensive", Name: "Defensive", Attack: 0.6, Defense: 1.5, Heal: 1.2, Buff: 1.0, Positioning: 0.8, RiskTolerance: 0.3, TargetVulnerability: 0.6, AreaPreference: 0.5, RetreatThreshold: 0.45},
		{ID: "tactical", Name: "Tactical", Attack: 1.0, Defense: 0.9, Heal: 0.8, Buff: 1.0, Positioning: 1.3, RiskTolerance: 0.6, TargetVulnerability: 1.3, AreaPreference: 1.2, RetreatThreshold: 0.3},
		{ID: "opportunistic", Name: "Opportunistic", Attack: 1.1, Defense: 0.6, Heal: 0.4, Buff: 0.6, Positioning: 1.0, RiskTolerance: 0.8, TargetVulnerability: 1.6, AreaPreference: 0.9, RetreatThreshold: 0.25},
		{ID: "berserker", Name: "Berserker", Attack: 1.8, Defense: 0.2, Heal: 0.1, Buff: 0.3, Positioning: 0.4, RiskTolerance: 1.6, TargetVulnerability: 0.8, AreaPreference: 1.0, RetreatThreshold: 0},
		{ID: "support", Name: "Support", Attack: 0.5, Defense: 1.0, Heal: 1.8, Buff: 1.5, Positioning: 0.9, RiskTolerance: 0.4, TargetVulnerability: 0.5, AreaPreference: 0.6, RetreatThreshold: 0.4},
		{ID: "caster", Name: "Caster", Attack: 1.2, Defense: 0.7, Heal: 0.6, Buff: 0.9, Positioning: 1.1, RiskTolerance: 0.5, TargetVulnerability: 1.0, AreaPreference: 1.5, RetreatThreshold: 0.35},
		{ID: "assassin", Name: "Assassin", Attack: 1.4, Defense: 0.3, Heal: 0.2, Buff: 0.4, Positioning: 1.4, RiskTolerance: 0.9, TargetVulnerability: 1.8, AreaPreference: 0.4, RetreatThreshold: 0.2},
	}
}

// Registry indexes Profiles by id.
//
// Invariant: every stored profile has passed Validate.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry returns a Registry pre-populated with the builtin profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}
	for _, p := range BuiltinProfiles() {
		r.profiles[p.ID] = p
	}
	return r
}

// Register validates and stores p, replacing any profile with the same id.
func (r *Registry) Register(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.profiles[p.ID] = p
	return nil
}

// Get returns the profile with the given id, or false.
func (r *Registry) Get(id string) (*Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// All returns every registered profile, sorted by id.
func (r *Registry) All() []*Profile {
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// yamlProfileFile wraps the YAML top-level key.
type yamlProfileFile struct {
	Profiles []*Profile `yaml:"profiles"`
}

// LoadDirectory reads all *.yaml files from dir and registers the profiles
// they contain. Unknown YAML fields are rejected so catalog typos surface at
// load time rather than as silently-zero weights.
func (r *Registry) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("ai: reading profile dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("ai: reading %s: %w", e.Name(), err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		var f yamlProfileFile
		if err := dec.Decode(&f); err != nil {
			return fmt.Errorf("ai: parsing %s: %w", e.Name(), err)
		}
		for _, p := range f.Profiles {
			if err := r.Register(p); err != nil {
				return fmt.Errorf("ai: %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}
