package effect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/duskfall/engine/internal/game/effect"
)

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDef := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	writeDef("poison.yaml", `
id: poison
name: Poison
kind: damage_over_time
stack_policy: independent
max_stacks: 2
magnitude: 4
duration: 3
dispellable: true
`)
	writeDef("stun.yaml", `
id: stun
name: Stunned
kind: debuff
stack_policy: none
duration: 1
prevents_acting: true
`)
	writeDef("notes.txt", "ignored")

	reg, err := effect.LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("loaded %d defs, want 2", len(reg.All()))
	}
	poison, ok := reg.Get("poison")
	if !ok {
		t.Fatal("poison not registered")
	}
	if poison.Kind() != effect.KindDamageOverTime || poison.Policy() != effect.StackIndependent {
		t.Errorf("poison parsed kind/policy = %v/%v", poison.Kind(), poison.Policy())
	}
	stun, _ := reg.Get("stun")
	if !stun.PreventsActing {
		t.Error("stun should prevent acting")
	}
}

func TestLoadDirectoryRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	body := "id: bad\nkind: buff\nduraton: 3\n" // misspelled field
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := effect.LoadDirectory(dir); err == nil {
		t.Fatal("expected error for unknown YAML field")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		def  effect.Definition
	}{
		{"empty id", effect.Definition{KindName: "buff"}},
		{"bad kind", effect.Definition{ID: "x", KindName: "blessing"}},
		{"bad policy", effect.Definition{ID: "x", KindName: "buff", PolicyName: "sometimes"}},
		{"negative stacks", effect.Definition{ID: "x", KindName: "buff", MaxStacks: -1}},
		{"bad duration", effect.Definition{ID: "x", KindName: "buff", Duration: -2}},
		{"bad immunity", effect.Definition{ID: "x", KindName: "buff", GrantsImmunity: []string{"nope"}}},
	}
	for _, c := range cases {
		d := c.def
		if err := d.Validate(); err == nil {
			t.Errorf("%s: Validate should fail", c.name)
		}
	}
}

func TestModifierAggregation(t *testing.T) {
	s := effect.NewActiveSet("p1", nil)
	weak := &effect.Definition{
		ID: "weakened", KindName: "debuff", PolicyName: "independent", MaxStacks: 3,
		Duration: 3, AttackDelta: -2, MightDelta: -1,
	}
	if err := weak.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Apply(weak, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Apply(weak, "a"); err != nil {
		t.Fatal(err)
	}

	if got := effect.AttackBonus(s); got != -4 {
		t.Errorf("AttackBonus = %d, want -4 at 2 stacks", got)
	}
	might, _, _, _ := effect.AttributeDeltas(s)
	if might != -2 {
		t.Errorf("might delta = %d, want -2", might)
	}

	silence := &effect.Definition{ID: "silence", KindName: "debuff", PolicyName: "none", Duration: 2, PreventsMagic: true}
	if err := silence.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Apply(silence, "a"); err != nil {
		t.Fatal(err)
	}
	if !effect.IsSilenced(s) {
		t.Error("IsSilenced should be true")
	}
	if effect.IsStunned(s) {
		t.Error("IsStunned should be false")
	}

	veil := &effect.Definition{ID: "shadow_veil", KindName: "buff", PolicyName: "refresh", Duration: 2, ShadowResistance: 5}
	if err := veil.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Apply(veil, "a"); err != nil {
		t.Fatal(err)
	}
	if got := effect.ShadowResistance(s); got != 5 {
		t.Errorf("ShadowResistance = %d, want 5", got)
	}
}
