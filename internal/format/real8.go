package format

import (
	"fmt"
	"math"
)

// REAL8 is the GDSII excess-64 base-16 floating point format:
//
//	Bit   63     sign
//	Bits  62-56  exponent, excess 64, power of 16
//	Bits  55-0   mantissa m, interpreted as m / 2^56 in [1/16, 1)
//
// value = (-1)^sign * m/2^56 * 16^(exponent-64)

const (
	real8MantissaBits = 56
	real8MantissaMask = 1<<real8MantissaBits - 1
	real8Bias         = 64
)

// EncodeReal8 converts v into its REAL8 bit pattern. The conversion is
// exact for every float64 whose magnitude fits the format's exponent range.
func EncodeReal8(v float64) (uint64, error) {
	if v == 0 {
		return 0, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%v: %w", v, ErrRealRange)
	}
	var sign uint64
	if v < 0 {
		sign = 1 << 63
		v = -v
	}
	frac, exp2 := math.Frexp(v) // v = frac * 2^exp2, frac in [0.5, 1)
	// Choose e so that m = v / 16^e lands in [1/16, 1): exp2-4e in [-3, 0].
	e := (exp2 + 3) >> 2
	mant := uint64(math.Ldexp(frac, exp2-4*e+real8MantissaBits))
	biased := e + real8Bias
	if biased < 0 || biased > 0x7F {
		return 0, fmt.Errorf("%v: %w", v, ErrRealRange)
	}
	return sign | uint64(biased)<<real8MantissaBits | mant&real8MantissaMask, nil
}

// DecodeReal8 converts a REAL8 bit pattern back into a float64.
func DecodeReal8(bits uint64) float64 {
	mant := bits & real8MantissaMask
	if mant == 0 {
		return 0
	}
	exp := int((bits>>real8MantissaBits)&0x7F) - real8Bias
	v := math.Ldexp(float64(mant), 4*exp-real8MantissaBits)
	if bits>>63 != 0 {
		return -v
	}
	return v
}
