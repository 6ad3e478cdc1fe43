package actor_test

import (
	"testing"

	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/effect"
)

func newParticipant() *actor.Participant {
	return &actor.Participant{
		ID: "p1", Name: "Wren", Faction: actor.FactionPlayer, Level: 3,
		Attr:      actor.Attributes{Might: 10, Intellect: 8, Will: 8, Shadow: 2},
		Health:    50, MaxHealth: 50,
		Mana:      20, MaxMana: 20,
		AP:        3, MaxAP: 3,
		Armor:     2,
		Effects:   effect.NewActiveSet("p1", nil),
		Cooldowns: make(map[string]int),
	}
}

func TestFactionAlliedWith(t *testing.T) {
	if !actor.FactionPlayer.AlliedWith(actor.FactionAlly) {
		t.Error("player and ally should be allied")
	}
	if !actor.FactionAlly.AlliedWith(actor.FactionPlayer) {
		t.Error("AlliedWith should be symmetric")
	}
	if actor.FactionPlayer.AlliedWith(actor.FactionEnemy) {
		t.Error("player and enemy should not be allied")
	}
	if !actor.FactionEnemy.AlliedWith(actor.FactionEnemy) {
		t.Error("a faction is allied with itself")
	}
}

func TestApplyDamageClampsAtZero(t *testing.T) {
	p := newParticipant()
	dealt := p.ApplyDamage(80)
	if dealt != 50 {
		t.Errorf("dealt = %d, want 50 (clamped)", dealt)
	}
	if p.Health != 0 {
		t.Errorf("health = %d, want 0", p.Health)
	}
	if !p.IsDown() || !p.IsIncapacitated() {
		t.Error("participant at 0 health should be down and incapacitated")
	}
}

func TestApplyHealingClampsAtMax(t *testing.T) {
	p := newParticipant()
	p.Health = 45
	restored := p.ApplyHealing(20)
	if restored != 5 {
		t.Errorf("restored = %d, want 5 (clamped)", restored)
	}
	if p.Health != p.MaxHealth {
		t.Errorf("health = %d, want max %d", p.Health, p.MaxHealth)
	}
}

func TestSpendResourcesNeverNegative(t *testing.T) {
	p := newParticipant()
	if p.SpendMana(25) {
		t.Error("SpendMana should refuse an unaffordable cost")
	}
	if p.Mana != 20 {
		t.Errorf("mana mutated on refusal: %d", p.Mana)
	}
	if !p.SpendAP(3) {
		t.Error("SpendAP should allow spending the full budget")
	}
	if p.SpendAP(1) {
		t.Error("SpendAP should refuse with an empty budget")
	}
	if p.AP != 0 {
		t.Errorf("ap = %d, want 0", p.AP)
	}
}

func TestStunnedIsIncapacitatedButNotDown(t *testing.T) {
	p := newParticipant()
	stun := &effect.Definition{ID: "stun", KindName: "debuff", PolicyName: "none", Duration: 1, PreventsActing: true}
	if err := stun.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Effects.Apply(stun, "x"); err != nil {
		t.Fatal(err)
	}
	if !p.IsIncapacitated() {
		t.Error("stunned participant should be incapacitated")
	}
	if p.IsDown() {
		t.Error("stunned participant is not down")
	}
}

func TestResistances(t *testing.T) {
	p := newParticipant()
	// armor 2 + might 10/5 = 4
	if got := p.PhysicalResistance(); got != 4 {
		t.Errorf("physical resistance = %d, want 4", got)
	}
	// will 8/4 = 2
	if got := p.MagicalResistance(); got != 2 {
		t.Errorf("magical resistance = %d, want 2", got)
	}
	if got := p.ShadowResistance(); got != 0 {
		t.Errorf("shadow resistance = %d, want 0 without effects", got)
	}

	veil := &effect.Definition{ID: "veil", KindName: "buff", PolicyName: "refresh", Duration: 2, ShadowResistance: 3}
	if err := veil.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Effects.Apply(veil, "x"); err != nil {
		t.Fatal(err)
	}
	if got := p.ShadowResistance(); got != 3 {
		t.Errorf("shadow resistance = %d, want 3 with veil", got)
	}
}

func TestEffectiveAttributesFloorAtZero(t *testing.T) {
	p := newParticipant()
	drain := &effect.Definition{ID: "drain", KindName: "debuff", PolicyName: "refresh", Duration: 2, MightDelta: -15}
	if err := drain.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Effects.Apply(drain, "x"); err != nil {
		t.Fatal(err)
	}
	if got := p.EffectiveAttributes().Might; got != 0 {
		t.Errorf("effective might = %d, want floored 0", got)
	}
}

func TestCorruption(t *testing.T) {
	p := newParticipant()
	p.AddCorruption(35)
	if p.Corruption != 35 {
		t.Errorf("corruption = %d, want 35", p.Corruption)
	}
	if got := p.CorruptionPowerBonus(); got != 3 {
		t.Errorf("corruption bonus = %d, want 3", got)
	}
	if !p.MeetsCorruption(30) || p.MeetsCorruption(40) {
		t.Error("MeetsCorruption threshold wrong")
	}
	p.AddCorruption(100)
	if p.Corruption != 100 {
		t.Errorf("corruption = %d, want clamped 100", p.Corruption)
	}
	p.AddCorruption(-500)
	if p.Corruption != 0 {
		t.Errorf("corruption = %d, want clamped 0", p.Corruption)
	}
}

func TestCooldowns(t *testing.T) {
	p := newParticipant()
	p.SetCooldown("fireball", 2)
	if !p.OnCooldown("fireball") {
		t.Error("fireball should be on cooldown")
	}
	p.TickCooldowns()
	if !p.OnCooldown("fireball") {
		t.Error("fireball should still be on cooldown after one tick")
	}
	p.TickCooldowns()
	if p.OnCooldown("fireball") {
		t.Error("fireball should be off cooldown after two ticks")
	}
	if _, present := p.Cooldowns["fireball"]; present {
		t.Error("expired cooldown entry should be dropped")
	}
}

func TestValidate(t *testing.T) {
	p := newParticipant()
	if err := p.Validate(); err != nil {
		t.Fatalf("valid participant rejected: %v", err)
	}
	bad := newParticipant()
	bad.MaxHealth = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero max health should be rejected")
	}
	ai := newParticipant()
	ai.Control = actor.ControlAI
	if err := ai.Validate(); err == nil {
		t.Error("AI participant without profile should be rejected")
	}
	ai.ProfileID = "aggressive"
	if err := ai.Validate(); err != nil {
		t.Errorf("AI participant with profile rejected: %v", err)
	}
}

func TestMovementBudget(t *testing.T) {
	p := newParticipant()
	if got := p.MovementBudget(); got != 3 {
		t.Errorf("budget = %d, want 3 (speed defaults to 1)", got)
	}
	p.MoveSpeed = 2
	if got := p.MovementBudget(); got != 6 {
		t.Errorf("budget = %d, want 6", got)
	}
	p.AP = 0
	if got := p.MovementBudget(); got != 0 {
		t.Errorf("budget = %d, want 0", got)
	}
}
