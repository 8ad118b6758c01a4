package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestLengthPixels 覆盖常见单位到像素的换算。
func TestLengthPixels(t *testing.T) {
	cases := []struct {
		in   Length
		want float64
	}{
		{Length{Value: 12, Unit: UnitPX}, 12},
		{Length{Value: 1, Unit: UnitIN}, 96},
		{Length{Value: 72, Unit: UnitPT}, 96},
		{Length{Value: 25.4, Unit: UnitMM}, 96},
		{Length{Value: 2.54, Unit: UnitCM}, 96},
	}
	for _, c := range cases {
		if got := c.in.Pixels(); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%g%s 转 px 期望 %g，实际 %g", c.in.Value, c.in.Unit, c.want, got)
		}
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want Length
		ok   bool
	}{
		{"12", Length{Value: 12, Unit: UnitPX}, true},
		{" 8px ", Length{Value: 8, Unit: UnitPX}, true},
		{"9PT", Length{Value: 9, Unit: UnitPT}, true},
		{"4.5mm", Length{Value: 4.5, Unit: UnitMM}, true},
		{"1in", Length{Value: 1, Unit: UnitIN}, true},
		{"", Length{}, false},
		{"abc", Length{}, false},
		{"px", Length{}, false},
	}
	for _, c := range cases {
		got, ok := ParseLength(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParseLength(%q) = %+v,%v; want %+v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
