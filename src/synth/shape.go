package synth

import "math"

// CurveResolution is the number of entries in a quantizer lookup table. It
// does not depend on the bit depth.
const CurveResolution = 4096

// Bitcrusher reduces amplitude resolution to 2^Bits values evenly spread
// over [-1, 1], i.e. 2^Bits-1 steps. Lookup is nearest-entry, so every output
// is one of those values.
type Bitcrusher struct {
	Bits  int
	table []float64
}

func NewBitcrusher(bits int) *Bitcrusher {
	b := &Bitcrusher{Bits: bits, table: make([]float64, CurveResolution)}
	for i := range b.table {
		x := 2*float64(i)/float64(CurveResolution-1) - 1
		b.table[i] = Quantize(x, bits)
	}
	return b
}

// Quantize snaps x onto the 2^bits level grid spanning [-1, 1]. This is not
// round(x*levels)/levels, which is symmetric about 0 and gives 2^(bits+1)-1
// values instead of 2^bits.
func Quantize(x float64, bits int) float64 {
	steps := math.Exp2(float64(bits)) - 1
	x = math.Max(-1, math.Min(1, x))
	u := (x + 1) / 2
	return 2*math.Round(u*steps)/steps - 1
}

// Crush maps x through the table
func (b *Bitcrusher) Crush(x float64) float64 {
	x = math.Max(-1, math.Min(1, x))
	i := int(math.Round((x + 1) / 2 * float64(CurveResolution-1)))
	return b.table[i]
}

// Levels lists every value Crush can return, lowest first
func (b *Bitcrusher) Levels() []float64 {
	n := 1 << b.Bits
	out := make([]float64, n)
	for i := range out {
		out[i] = 2*float64(i)/float64(n-1) - 1
	}
	return out
}

// Saturator soft-clips above Threshold with a tanh knee. Below the threshold
// it is the identity.
type Saturator struct {
	Threshold float64
	Intensity float64
}

// DefaultSaturator is the warm, gentle curve the voices share
var DefaultSaturator = Saturator{Threshold: 0.8, Intensity: 5}

func (s Saturator) Saturate(x float64) float64 {
	return Saturate(x, s.Threshold, s.Intensity)
}

// Saturate is threshold + (1-threshold)*tanh((|x|-threshold)*intensity),
// sign preserved, for |x| above threshold
func Saturate(x, threshold, intensity float64) float64 {
	a := math.Abs(x)
	if a <= threshold {
		return x
	}
	y := threshold + (1-threshold)*math.Tanh((a-threshold)*intensity)
	return math.Copysign(y, x)
}
