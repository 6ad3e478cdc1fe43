package effect

// ArmorBonus returns the net armor modifier from all active effects,
// scaled by stack count. Negative for armor-shredding debuffs.
func ArmorBonus(s *ActiveSet) int {
	total := 0
	for _, inst := range s.instances {
		total += inst.Def.ArmorDelta * inst.Stacks
	}
	return total
}

// AttackBonus returns the net attack power modifier from all active effects,
// scaled by stack count.
func AttackBonus(s *ActiveSet) int {
	total := 0
	for _, inst := range s.instances {
		total += inst.Def.AttackDelta * inst.Stacks
	}
	return total
}

// ShadowResistance returns the total explicit shadow resistance from active
// effects. Shadow damage bypasses conventional defense, so this is the only
// mitigation that applies to it.
//
// Postcondition: Returns >= 0 when content only uses non-negative
// shadow_resistance values.
func ShadowResistance(s *ActiveSet) int {
	total := 0
	for _, inst := range s.instances {
		total += inst.Def.ShadowResistance * inst.Stacks
	}
	return total
}

// AttributeDeltas returns the net (might, intellect, will, shadow) attribute
// modifiers from all active effects, scaled by stack count.
func AttributeDeltas(s *ActiveSet) (might, intellect, will, shadow int) {
	for _, inst := range s.instances {
		might += inst.Def.MightDelta * inst.Stacks
		intellect += inst.Def.IntellectDelta * inst.Stacks
		will += inst.Def.WillDelta * inst.Stacks
		shadow += inst.Def.ShadowDelta * inst.Stacks
	}
	return might, intellect, will, shadow
}

// IsStunned reports whether any active effect prevents the owner from acting.
func IsStunned(s *ActiveSet) bool {
	for _, inst := range s.instances {
		if inst.Def.PreventsActing {
			return true
		}
	}
	return false
}

// IsSilenced reports whether any active effect blocks magical, shadow, and
// hybrid abilities.
func IsSilenced(s *ActiveSet) bool {
	for _, inst := range s.instances {
		if inst.Def.PreventsMagic {
			return true
		}
	}
	return false
}
