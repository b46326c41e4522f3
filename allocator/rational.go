package allocator

// Rational is an exact fraction for integer percentage arithmetic
type Rational struct {
	Nominator   uint64
	Denominator uint64
}

// NewRational ...
func NewRational(nominator uint64, denominator uint64) Rational {
	return Rational{
		Nominator:   nominator,
		Denominator: denominator,
	}
}

// MulUint32 returns v * r rounded down
func (r Rational) MulUint32(v uint32) uint32 {
	return uint32(uint64(v) * r.Nominator / r.Denominator)
}

// Percent returns 100 * r rounded down, or 0 for an empty denominator
func (r Rational) Percent() uint32 {
	if r.Denominator == 0 {
		return 0
	}
	return r.MulUint32(100)
}
