package dice

import "testing"

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

func TestD20Range(t *testing.T) {
	src := NewCryptoSource()
	for i := 0; i < 200; i++ {
		v := D20(src)
		if v < 1 || v > 20 {
			t.Fatalf("D20 returned %d, want [1,20]", v)
		}
	}
}

func TestVariancePercentBounds(t *testing.T) {
	src := NewCryptoSource()
	for i := 0; i < 200; i++ {
		v := VariancePercent(src, 20)
		if v < 80 || v > 120 {
			t.Fatalf("VariancePercent returned %d, want [80,120]", v)
		}
	}
}

func TestVariancePercentZeroSpread(t *testing.T) {
	if got := VariancePercent(fixedSrc{val: 7}, 0); got != 100 {
		t.Fatalf("VariancePercent with zero spread = %d, want 100", got)
	}
}

func TestSeededSourceDeterminism(t *testing.T) {
	a := NewSeededSource(42)
	b := NewSeededSource(42)
	for i := 0; i < 100; i++ {
		va, vb := a.Intn(1000), b.Intn(1000)
		if va != vb {
			t.Fatalf("seeded sources diverged at draw %d: %d != %d", i, va, vb)
		}
	}
}

func TestSeededSourcePanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for Intn(0)")
		}
	}()
	NewSeededSource(1).Intn(0)
}
