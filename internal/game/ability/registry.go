package ability

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/duskfall/engine/internal/game/effect"
)

// Registry holds all known ability Definitions keyed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates a Registry pre-populated with the built-in basic
// attack.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]*Definition)}
	r.defs[BasicAttackID] = BasicAttack()
	return r
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
// The fixed order keeps every consumer that ranges the catalog (candidate
// generation in particular) deterministic under a seeded source.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ValidateEffectRefs checks that every effect id referenced by any ability
// exists in effects. Run after both catalogs load, so an ability naming a
// missing effect is a startup error rather than a combat-time one.
func (r *Registry) ValidateEffectRefs(effects *effect.Registry) error {
	for _, d := range r.defs {
		for _, id := range d.AppliesEffects {
			if _, ok := effects.Get(id); !ok {
				return fmt.Errorf("ability %q references unknown effect %q", d.ID, id)
			}
		}
	}
	return nil
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Definition,
// and returns a populated Registry (including the built-in basic attack).
// Unknown YAML fields are load-time errors.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the file
// that failed to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ability: reading dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ability: reading %q: %w", path, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("ability: parsing %q: %w", path, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("ability: %q: %w", path, err)
		}
	}
	return reg, nil
}
